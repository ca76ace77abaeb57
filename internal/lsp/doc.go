// Package lsp implements a minimal language-server client: JSON-RPC
// 2.0 over the server process's stdio with Content-Length framing,
// document synchronization via didOpen/didChange, and completion
// requests.
//
// Requests are asynchronous. Request returns an id immediately; the
// response is parsed on the read loop and completion results are kept
// in the client until the buffer consumes or discards them. The UI
// thread never blocks on the server.
package lsp
