package lsp

import (
	"errors"
	"fmt"
)

var (
	// ErrShutdown is returned when the client has been closed.
	ErrShutdown = errors.New("lsp: client is shut down")

	// ErrNoServer is returned when the language has no server
	// executable configured.
	ErrNoServer = errors.New("lsp: no server configured")
)

// RPCError is a JSON-RPC error object returned by the server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("lsp: rpc error %d: %s", e.Code, e.Message)
}
