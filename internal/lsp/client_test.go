package lsp

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"testing"
)

func TestHandleDiagnosticsStoresLatest(t *testing.T) {
	c := &Client{uri: "file:///x.rs"}

	c.handleDiagnostics(json.RawMessage(`{
		"uri": "file:///x.rs",
		"diagnostics": [
			{"range":{"start":{"line":1,"character":2},"end":{"line":1,"character":5}},"severity":1,"message":"bad"},
			{"range":{"start":{"line":3,"character":0},"end":{"line":3,"character":4}},"severity":2,"message":"iffy"}
		]
	}`))

	got := c.Diagnostics()
	if len(got) != 2 {
		t.Fatalf("len(Diagnostics()) = %d, want 2", len(got))
	}
	if got[0].Severity != SeverityError || got[0].Message != "bad" {
		t.Errorf("first diagnostic = %+v", got[0])
	}
	if got[1].Range.Start.Line != 3 {
		t.Errorf("second diagnostic line = %d, want 3", got[1].Range.Start.Line)
	}

	// A fresh publish replaces, never appends.
	c.handleDiagnostics(json.RawMessage(`{"uri":"file:///x.rs","diagnostics":[]}`))
	if got := c.Diagnostics(); len(got) != 0 {
		t.Errorf("after empty publish: %d diagnostics remain", len(got))
	}
}

func TestHandleDiagnosticsIgnoresOtherDocuments(t *testing.T) {
	c := &Client{uri: "file:///x.rs"}

	c.handleDiagnostics(json.RawMessage(`{
		"uri": "file:///other.rs",
		"diagnostics": [{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}},"severity":1,"message":"bad"}]
	}`))

	if got := c.Diagnostics(); len(got) != 0 {
		t.Errorf("diagnostics for another document were stored: %+v", got)
	}
}

func TestSetLogFuncRedirectsFaults(t *testing.T) {
	var msgs []string
	SetLogFunc(func(format string, args ...any) {
		msgs = append(msgs, fmt.Sprintf(format, args...))
	})
	defer SetLogFunc(log.Printf)

	tr, _ := newTestTransport()
	tr.close()
	c := &Client{uri: "file:///x.rs", transport: tr}
	c.DidInsert(0, 0, []byte("x"))

	if len(msgs) != 1 || !strings.Contains(msgs[0], "didChange") {
		t.Errorf("fault not routed through SetLogFunc: %v", msgs)
	}
}

func TestHandleDiagnosticsMalformedPayload(t *testing.T) {
	c := &Client{uri: "file:///x.rs"}
	c.handleDiagnostics(json.RawMessage(`{not json`))
	if got := c.Diagnostics(); len(got) != 0 {
		t.Errorf("malformed payload produced diagnostics: %+v", got)
	}
}
