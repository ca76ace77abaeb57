package lsp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// transport frames JSON-RPC 2.0 messages over a server's stdio with
// Content-Length headers. Requests are not awaited: responses are
// routed on the read loop to the handler registered for the request
// id.
type transport struct {
	reader *bufio.Reader
	writer io.Writer

	mu      sync.Mutex
	nextID  atomic.Int64
	pending map[int64]responseHandler
	notify  map[string]notificationHandler

	closed atomic.Bool
	done   chan struct{}
}

type responseHandler func(id int64, result json.RawMessage, rpcErr *RPCError)

type notificationHandler func(params json.RawMessage)

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type incoming struct {
	ID     *int64          `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
	Params json.RawMessage `json:"params"`
}

func newTransport(r io.Reader, w io.Writer) *transport {
	return &transport{
		reader:  bufio.NewReaderSize(r, 64*1024),
		writer:  w,
		pending: make(map[int64]responseHandler),
		notify:  make(map[string]notificationHandler),
		done:    make(chan struct{}),
	}
}

// request sends a request and registers handler for its response.
// Returns the request id.
func (t *transport) request(method string, params any, handler responseHandler) (int64, error) {
	if t.closed.Load() {
		return 0, ErrShutdown
	}

	id := t.nextID.Add(1)
	t.mu.Lock()
	t.pending[id] = handler
	t.mu.Unlock()

	req := &request{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	if err := t.send(req); err != nil {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
		return 0, err
	}
	return id, nil
}

// notification sends a notification; no response is expected.
func (t *transport) notification(method string, params any) error {
	if t.closed.Load() {
		return ErrShutdown
	}
	return t.send(&request{JSONRPC: "2.0", Method: method, Params: params})
}

// onNotification registers a handler for server-initiated
// notifications of the given method.
func (t *transport) onNotification(method string, handler notificationHandler) {
	t.mu.Lock()
	t.notify[method] = handler
	t.mu.Unlock()
}

// cancel drops the response handler for id, if still pending.
func (t *transport) cancel(id int64) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

func (t *transport) close() {
	if t.closed.Swap(true) {
		return
	}
	close(t.done)
	t.mu.Lock()
	t.pending = make(map[int64]responseHandler)
	t.mu.Unlock()
}

func (t *transport) send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprintf(t.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// readLoop reads and dispatches messages until the stream closes.
func (t *transport) readLoop() {
	for {
		select {
		case <-t.done:
			return
		default:
		}

		msg, err := t.readMessage()
		if err != nil {
			return
		}
		t.dispatch(msg)
	}
}

// readMessage reads one Content-Length framed message.
func (t *transport) readMessage() (json.RawMessage, error) {
	contentLength := 0
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if rest, ok := strings.CutPrefix(strings.ToLower(line), "content-length:"); ok {
			length, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				return nil, fmt.Errorf("bad Content-Length: %w", err)
			}
			contentLength = length
		}
	}

	if contentLength <= 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(t.reader, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (t *transport) dispatch(data json.RawMessage) {
	var msg incoming
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	if msg.ID != nil && msg.Method == "" {
		t.mu.Lock()
		handler, ok := t.pending[*msg.ID]
		delete(t.pending, *msg.ID)
		t.mu.Unlock()
		if ok && handler != nil {
			handler(*msg.ID, msg.Result, msg.Error)
		}
		return
	}

	if msg.Method != "" {
		t.mu.Lock()
		handler, ok := t.notify[msg.Method]
		t.mu.Unlock()
		if ok && handler != nil {
			handler(msg.Params)
		}
	}
}
