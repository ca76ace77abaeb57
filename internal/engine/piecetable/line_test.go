package piecetable

import (
	"bytes"
	"testing"
)

func TestLineAtIndex(t *testing.T) {
	tb := FromBytes([]byte("abc\ndef\nghi"))

	tests := []struct {
		index     int
		wantStart int
		wantEnd   int
		wantOK    bool
	}{
		{0, 0, 3, true},
		{1, 4, 7, true},
		{2, 8, 11, true},
		{3, 0, 0, false},
	}

	for _, tt := range tests {
		line, ok := tb.LineAtIndex(tt.index)
		if ok != tt.wantOK {
			t.Errorf("LineAtIndex(%d) ok = %v, want %v", tt.index, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if line.Start != tt.wantStart || line.End != tt.wantEnd {
			t.Errorf("LineAtIndex(%d) = [%d,%d), want [%d,%d)",
				tt.index, line.Start, line.End, tt.wantStart, tt.wantEnd)
		}
		if line.Length != tt.wantEnd-tt.wantStart {
			t.Errorf("LineAtIndex(%d).Length = %d, want %d",
				tt.index, line.Length, tt.wantEnd-tt.wantStart)
		}
	}
}

// TestLineEndsMatchNewlines checks that for documents built purely from
// inserts, every line's End lands on the corresponding newline offset.
func TestLineEndsMatchNewlines(t *testing.T) {
	tb := New()
	parts := []string{"alpha\n", "beta\ngamma\n", "delta"}
	pos := 0
	for _, p := range parts {
		if err := tb.Insert(pos, []byte(p)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		pos += len(p)
	}

	content := tb.Bytes()
	var newlines []int
	for i, b := range content {
		if b == '\n' {
			newlines = append(newlines, i)
		}
	}

	for i, want := range newlines {
		line, ok := tb.LineAtIndex(i)
		if !ok {
			t.Fatalf("LineAtIndex(%d) missing", i)
		}
		if line.End != want {
			t.Errorf("line %d End = %d, want newline offset %d", i, line.End, want)
		}
	}

	last, ok := tb.LineAtIndex(len(newlines))
	if !ok {
		t.Fatalf("trailing line missing")
	}
	if last.End != len(content) {
		t.Errorf("trailing line End = %d, want %d", last.End, len(content))
	}
}

func TestLineIndex(t *testing.T) {
	tb := FromBytes([]byte("abc\ndef\nghi"))

	tests := []struct {
		pos  int
		want int
	}{
		{0, 0}, {2, 0}, {3, 0},
		{4, 1}, {6, 1}, {7, 1},
		{8, 2}, {10, 2},
		{11, 3}, // past end reports the linebreak count
	}
	for _, tt := range tests {
		if got := tb.LineIndex(tt.pos); got != tt.want {
			t.Errorf("LineIndex(%d) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestColIndex(t *testing.T) {
	tb := FromBytes([]byte("abc\ndef"))

	tests := []struct {
		pos  int
		want int
	}{
		{0, 0}, {1, 1}, {3, 3},
		{4, 0}, {5, 1}, {6, 2},
	}
	for _, tt := range tests {
		if got := tb.ColIndex(tt.pos); got != tt.want {
			t.Errorf("ColIndex(%d) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestOffsetFromLineCol(t *testing.T) {
	tb := FromBytes([]byte("abc\ndef"))

	tests := []struct {
		line, col int
		want      int
		wantOK    bool
	}{
		{0, 0, 0, true},
		{0, 2, 2, true},
		{0, 99, 3, true}, // clamped to line length
		{1, 1, 5, true},
		{5, 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := tb.OffsetFromLineCol(tt.line, tt.col)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("OffsetFromLineCol(%d,%d) = (%d,%v), want (%d,%v)",
				tt.line, tt.col, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLineTextAndAffixes(t *testing.T) {
	tb := FromBytes([]byte("  if x {\n}\n"))

	if got := tb.LineText(3); string(got) != "  if x {" {
		t.Errorf("LineText(3) = %q, want %q", got, "  if x {")
	}
	if !tb.LineStartsWith(3, []byte("if")) {
		t.Error("LineStartsWith(3, if) should be true")
	}
	if !tb.LineEndsWith(3, []byte("{")) {
		t.Error("LineEndsWith(3, {) should be true")
	}
	if tb.LineStartsWith(9, []byte("if")) {
		t.Error("LineStartsWith(9, if) should be false")
	}
}

func TestTextBetweenLines(t *testing.T) {
	tb := FromBytes([]byte("a\nb\nc\nd"))

	tests := []struct {
		start, end int
		want       string
	}{
		{0, 0, "a\n"},
		{1, 2, "b\nc\n"},
		{2, 3, "c\nd"},
		{0, 3, "a\nb\nc\nd"},
	}
	for _, tt := range tests {
		if got := tb.TextBetweenLines(tt.start, tt.end); string(got) != tt.want {
			t.Errorf("TextBetweenLines(%d,%d) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestLongestLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"single", "hello", 5},
		{"first longest", "hello\nhi", 5},
		{"last longest", "hi\nhello there", 11},
		{"middle longest", "a\nlongest\nbb\n", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromBytes([]byte(tt.input)).LongestLine(); got != tt.want {
				t.Errorf("LongestLine() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLineQueriesAfterEdits(t *testing.T) {
	tb := FromBytes([]byte("one\ntwo\nthree\n"))
	if err := tb.Insert(4, []byte("1.5\n")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tb.Delete(8, 12); err != nil { // remove "two\n"
		t.Fatalf("Delete: %v", err)
	}

	want := "one\n1.5\nthree\n"
	if got := string(tb.Bytes()); got != want {
		t.Fatalf("Bytes() = %q, want %q", got, want)
	}

	for i, text := range bytes.SplitAfter([]byte(want), []byte("\n")) {
		if len(text) == 0 {
			continue
		}
		line, ok := tb.LineAtIndex(i)
		if !ok {
			t.Fatalf("LineAtIndex(%d) missing", i)
		}
		trimmed := bytes.TrimSuffix(text, []byte("\n"))
		if line.Length != len(trimmed) {
			t.Errorf("line %d Length = %d, want %d", i, line.Length, len(trimmed))
		}
	}
}

func TestLineIndentWidth(t *testing.T) {
	tb := FromBytes([]byte("top\n        deep\n"))
	if got := tb.LineIndentWidth(0); got != 0 {
		t.Errorf("LineIndentWidth(0) = %d, want 0", got)
	}
	if got := tb.LineIndentWidth(5); got != 8 {
		t.Errorf("LineIndentWidth(5) = %d, want 8", got)
	}
}
