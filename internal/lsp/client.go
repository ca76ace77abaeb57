package lsp

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
)

// logf reports protocol faults the caller cannot observe through a
// return value.
var logf = log.Printf

// SetLogFunc redirects the package's fault logging; the default
// stdlib logger writes to stderr, which a terminal UI occupies.
// Must be called before Start.
func SetLogFunc(f func(format string, args ...any)) {
	if f != nil {
		logf = f
	}
}

// Client drives one language-server process for one document. All
// exported methods are safe to call from the UI thread and never
// block on the server.
type Client struct {
	uri        string
	languageID string
	version    int32

	cmd       *exec.Cmd
	transport *transport

	mu          sync.Mutex
	triggers    map[byte]struct{}
	completions map[int64]*CompletionList
	diagnostics []Diagnostic
	initialized bool
}

// Start spawns the server executable and performs the initialize
// handshake. The document is identified by uri for all subsequent
// notifications.
func Start(executable, uri, languageID string) (*Client, error) {
	if executable == "" {
		return nil, ErrNoServer
	}

	cmd := exec.Command(executable)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("lsp: start %s: %w", executable, err)
	}

	c := &Client{
		uri:         uri,
		languageID:  languageID,
		version:     1,
		cmd:         cmd,
		transport:   newTransport(stdout, stdin),
		triggers:    make(map[byte]struct{}),
		completions: make(map[int64]*CompletionList),
	}
	c.transport.onNotification("textDocument/publishDiagnostics", c.handleDiagnostics)
	go c.transport.readLoop()

	params := InitializeParams{
		ProcessID: os.Getpid(),
		Capabilities: ClientCapabilities{
			TextDocument: TextDocumentClientCapabilities{
				Completion: CompletionClientCapabilities{ContextSupport: true},
			},
		},
	}
	_, err = c.transport.request("initialize", params, func(_ int64, result json.RawMessage, rpcErr *RPCError) {
		if rpcErr != nil {
			logf("lsp: initialize: %v", rpcErr)
			return
		}
		var res InitializeResult
		if err := json.Unmarshal(result, &res); err != nil {
			logf("lsp: initialize result: %v", err)
			return
		}
		c.mu.Lock()
		if res.Capabilities.CompletionProvider != nil {
			for _, s := range res.Capabilities.CompletionProvider.TriggerCharacters {
				if len(s) == 1 {
					c.triggers[s[0]] = struct{}{}
				}
			}
		}
		c.initialized = true
		c.mu.Unlock()
		if err := c.transport.notification("initialized", struct{}{}); err != nil {
			logf("lsp: initialized: %v", err)
		}
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Close shuts the transport down and reaps the server process.
func (c *Client) Close() {
	c.transport.close()
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_ = c.cmd.Wait()
	}
}

// DidOpen announces the document and its full text.
func (c *Client) DidOpen(text []byte) {
	params := DidOpenParams{
		TextDocument: TextDocumentItem{
			URI:        c.uri,
			LanguageID: c.languageID,
			Version:    0,
			Text:       string(text),
		},
	}
	if err := c.transport.notification("textDocument/didOpen", params); err != nil {
		logf("lsp: didOpen: %v", err)
	}
}

// DidInsert reports text inserted at the given line/col.
func (c *Client) DidInsert(line, col int, text []byte) {
	pos := Position{Line: uint32(line), Character: uint32(col)}
	c.didChange(&Range{Start: pos, End: pos}, string(text))
}

// DidDelete reports the deletion of the span between two line/col
// addresses.
func (c *Client) DidDelete(startLine, startCol, endLine, endCol int) {
	c.didChange(&Range{
		Start: Position{Line: uint32(startLine), Character: uint32(startCol)},
		End:   Position{Line: uint32(endLine), Character: uint32(endCol)},
	}, "")
}

// DidReload replaces the server's copy with the full document text.
// Used after undo/redo, which can change arbitrary spans.
func (c *Client) DidReload(text []byte) {
	c.didChange(nil, string(text))
}

func (c *Client) didChange(r *Range, text string) {
	c.mu.Lock()
	version := c.version
	c.version++
	c.mu.Unlock()

	params := DidChangeParams{
		TextDocument:   VersionedTextDocumentIdentifier{URI: c.uri, Version: version},
		ContentChanges: []TextDocumentChangeEvent{{Range: r, Text: text}},
	}
	if err := c.transport.notification("textDocument/didChange", params); err != nil {
		logf("lsp: didChange: %v", err)
	}
}

// IsTriggerChar reports whether the server listed b as a completion
// trigger character.
func (c *Client) IsTriggerChar(b byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.triggers[b]
	return ok
}

// RequestCompletion asks for completions at line/col and returns the
// request id. The result becomes available asynchronously via
// Completion.
func (c *Client) RequestCompletion(line, col int) (int64, bool) {
	params := CompletionParams{
		TextDocument: TextDocumentIdentifier{URI: c.uri},
		Position:     Position{Line: uint32(line), Character: uint32(col)},
	}
	id, err := c.transport.request("textDocument/completion", params, func(id int64, result json.RawMessage, rpcErr *RPCError) {
		if rpcErr != nil {
			return
		}
		list := parseCompletionResult(result)
		if list == nil {
			return
		}
		c.mu.Lock()
		c.completions[id] = list
		c.mu.Unlock()
	})
	if err != nil {
		return 0, false
	}
	return id, true
}

// Completion returns the saved result for a completion request id.
func (c *Client) Completion(id int64) (*CompletionList, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.completions[id]
	return list, ok
}

// handleDiagnostics stores the latest published diagnostics for the
// document, replacing the previous set. Diagnostics for other
// documents are dropped.
func (c *Client) handleDiagnostics(params json.RawMessage) {
	var p PublishDiagnosticsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	if p.URI != "" && p.URI != c.uri {
		return
	}
	c.mu.Lock()
	c.diagnostics = p.Diagnostics
	c.mu.Unlock()
}

// Diagnostics returns the most recently published diagnostics for
// the document.
func (c *Client) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// DiscardCompletion drops a saved completion result and cancels the
// request if it is still pending.
func (c *Client) DiscardCompletion(id int64) {
	c.transport.cancel(id)
	c.mu.Lock()
	delete(c.completions, id)
	c.mu.Unlock()
}

// parseCompletionResult accepts both CompletionList and bare
// CompletionItem array responses.
func parseCompletionResult(result json.RawMessage) *CompletionList {
	if len(result) == 0 || string(result) == "null" {
		return nil
	}
	var list CompletionList
	if err := json.Unmarshal(result, &list); err == nil && list.Items != nil {
		return &list
	}
	var items []CompletionItem
	if err := json.Unmarshal(result, &items); err == nil {
		return &CompletionList{Items: items}
	}
	return nil
}
