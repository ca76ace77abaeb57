package highlight

import (
	"testing"
	"time"

	"github.com/tverras/kiln/internal/engine/piecetable"
	"github.com/tverras/kiln/internal/language"
)

func newTestCache(t *testing.T, chunkLines int) *Cache {
	t.Helper()
	c := New(language.FromPath("main.go"), chunkLines)
	if c == nil {
		t.Fatal("New returned nil for a known language")
	}
	t.Cleanup(c.Close)
	return c
}

func TestNewUnknownLanguage(t *testing.T) {
	if c := New(language.FromPath("notes.txt"), 0); c != nil {
		c.Close()
		t.Error("expected nil cache for plaintext")
	}
	if c := New(nil, 0); c != nil {
		c.Close()
		t.Error("expected nil cache for nil language")
	}
}

func TestInsertRebalanceShiftsSpans(t *testing.T) {
	pt := piecetable.FromBytes([]byte("aa\nbb\ncc\ndd\n"))
	c := newTestCache(t, 2)

	c.spans[0] = []Span{
		{Start: 0, Length: 1, Kind: KindKeyword},
		{Start: 1, Length: 2, Kind: KindKeyword},
		{Start: 3, Length: 2, Kind: KindKeyword},
	}

	c.InsertRebalance(pt, 1, 1)

	if got := c.spans[0][0]; got.Start != 0 {
		t.Errorf("span before edit point starts at %d, want 0", got.Start)
	}
	if got := c.spans[0][1]; got.Start != 2 {
		t.Errorf("span at edit point starts at %d, want 2", got.Start)
	}
	if got := c.spans[0][2]; got.Start != 4 {
		t.Errorf("later span starts at %d, want 4", got.Start)
	}
}

func TestInsertRebalanceLeavesEarlierSpans(t *testing.T) {
	pt := piecetable.FromBytes([]byte("aa\nbb\n"))
	c := newTestCache(t, 2)

	c.spans[0] = []Span{{Start: 0, Length: 2, Kind: KindKeyword}}
	c.InsertRebalance(pt, 3, 5)

	if got := c.spans[0][0]; got.Start != 0 {
		t.Errorf("earlier span moved to %d", got.Start)
	}
}

func TestDeleteRebalanceShiftsSpans(t *testing.T) {
	pt := piecetable.FromBytes([]byte("aa\nbb\ncc\ndd\n"))
	c := newTestCache(t, 2)

	c.spans[0] = []Span{
		{Start: 0, Length: 2, Kind: KindKeyword},
		{Start: 3, Length: 2, Kind: KindKeyword},
		{Start: 6, Length: 2, Kind: KindKeyword},
	}

	c.DeleteRebalance(pt, 3, 5)

	wantStarts := []int{0, 3, 4}
	for i, want := range wantStarts {
		if got := c.spans[0][i].Start; got != want {
			t.Errorf("span %d starts at %d, want %d", i, got, want)
		}
	}
}

func TestSpansForLinesWithinChunk(t *testing.T) {
	pt := piecetable.FromBytes([]byte("aa\nbb\ncc\ndd\nee"))
	c := newTestCache(t, 2)

	c.spans[0] = []Span{
		{Start: 0, Length: 2, Kind: KindKeyword},
		{Start: 3, Length: 2, Kind: KindKeyword},
	}

	got := c.SpansForLines(pt, 1, 2)
	if len(got) != 1 {
		t.Fatalf("got %d spans, want 1: %+v", len(got), got)
	}
	want := Span{Start: 0, Length: 2, Kind: KindKeyword}
	if got[0] != want {
		t.Errorf("span = %+v, want %+v", got[0], want)
	}
}

func TestSpansForLinesAcrossChunks(t *testing.T) {
	pt := piecetable.FromBytes([]byte("aa\nbb\ncc\ndd\nee"))
	c := newTestCache(t, 2)

	c.spans[0] = []Span{
		{Start: 0, Length: 2, Kind: KindKeyword},
		{Start: 3, Length: 2, Kind: KindKeyword},
	}
	c.spans[1] = []Span{
		{Start: 0, Length: 2, Kind: KindString},
		{Start: 3, Length: 2, Kind: KindString},
	}

	got := c.SpansForLines(pt, 1, 3)
	want := []Span{
		{Start: 0, Length: 2, Kind: KindKeyword},
		{Start: 3, Length: 2, Kind: KindString},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d spans, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("span %d = %+v, want %+v", i, got[i], w)
		}
	}
}

func TestSpansForLinesEmptyCache(t *testing.T) {
	pt := piecetable.FromBytes([]byte("aa\nbb\n"))
	c := newTestCache(t, 2)

	if got := c.SpansForLines(pt, 0, 1); len(got) != 0 {
		t.Errorf("expected no spans, got %+v", got)
	}
}

func TestWorkerHighlightsRefreshedChunk(t *testing.T) {
	pt := piecetable.FromBytes([]byte("func main() {}\n"))
	c := newTestCache(t, 0)

	c.Refresh(pt, 0)

	deadline := time.Now().Add(2 * time.Second)
	for {
		spans := c.SpansForLines(pt, 0, 1)
		if findSpan(spans, Span{Start: 0, Length: 4, Kind: KindKeyword}) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("worker never produced the keyword span, have %+v", spans)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if !c.TakeUpdated() {
		t.Error("updated flag not set after worker pass")
	}
	if c.TakeUpdated() {
		t.Error("updated flag not cleared by TakeUpdated")
	}
}

func TestReloadRequeuesWholeDocument(t *testing.T) {
	pt := piecetable.FromBytes([]byte("for\nif\nreturn\n"))
	c := newTestCache(t, 2)

	c.Reload(pt)

	deadline := time.Now().Add(2 * time.Second)
	for {
		// Line 2 lives in the second chunk.
		spans := c.SpansForLines(pt, 2, 3)
		if findSpan(spans, Span{Start: 0, Length: 6, Kind: KindKeyword}) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("second chunk never highlighted, have %+v", spans)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
