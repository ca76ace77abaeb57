package piecetable

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	tb := New()
	if tb.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tb.Len())
	}
	if tb.NumLines() != 0 {
		t.Errorf("NumLines() = %d, want 0", tb.NumLines())
	}
	if _, ok := tb.ByteAt(0); ok {
		t.Error("ByteAt(0) on empty table should report false")
	}
	if tb.Iter().Next() {
		t.Error("Iter on empty table should yield nothing")
	}
}

func TestFromBytesNormalization(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello\nworld", "hello\nworld"},
		{"crlf", "hello\r\nworld", "hello\nworld"},
		{"lone cr", "hello\rworld", "hello\nworld"},
		{"mixed", "a\r\nb\rc\nd", "a\nb\nc\nd"},
		{"trailing crlf", "line\r\n", "line\n"},
		{"cr at end", "line\r", "line\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := FromBytes([]byte(tt.input))
			if got := string(tb.Bytes()); got != tt.want {
				t.Errorf("Bytes() = %q, want %q", got, tt.want)
			}
			if tb.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", tb.Len(), len(tt.want))
			}
			wantBreaks := bytes.Count([]byte(tt.want), []byte("\n"))
			if tb.NumLines() != wantBreaks {
				t.Errorf("NumLines() = %d, want %d", tb.NumLines(), wantBreaks)
			}
		})
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		pos     int
		text    string
		want    string
	}{
		{"into empty", "", 0, "hello", "hello"},
		{"at start", "world", 0, "hello ", "hello world"},
		{"at end", "hello", 5, " world", "hello world"},
		{"middle split", "helloworld", 5, " ", "hello world"},
		{"with newline", "ab", 1, "\n", "a\nb"},
		{"empty text", "ab", 1, "", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := FromBytes([]byte(tt.initial))
			if err := tb.Insert(tt.pos, []byte(tt.text)); err != nil {
				t.Fatalf("Insert: %v", err)
			}
			if got := string(tb.Bytes()); got != tt.want {
				t.Errorf("Bytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInsertOutOfRange(t *testing.T) {
	tb := FromBytes([]byte("abc"))
	if err := tb.Insert(4, []byte("x")); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Insert(4) = %v, want ErrInvalidRange", err)
	}
	if err := tb.Insert(-1, []byte("x")); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Insert(-1) = %v, want ErrInvalidRange", err)
	}
	if got := string(tb.Bytes()); got != "abc" {
		t.Errorf("content changed on failed insert: %q", got)
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		start   int
		end     int
		want    string
	}{
		{"whole document", "hello", 0, 5, ""},
		{"head", "hello", 0, 2, "llo"},
		{"tail", "hello", 3, 5, "hel"},
		{"interior split", "hello", 1, 4, "ho"},
		{"empty range", "hello", 2, 2, "hello"},
		{"across newline", "ab\ncd", 1, 4, "ad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := FromBytes([]byte(tt.initial))
			if err := tb.Delete(tt.start, tt.end); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if got := string(tb.Bytes()); got != tt.want {
				t.Errorf("Bytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestDeleteAcrossPieces deletes a range spanning the tail of one piece
// and the head of the next.
func TestDeleteAcrossPieces(t *testing.T) {
	tb := FromBytes([]byte("hello "))
	if err := tb.Insert(6, []byte("world!")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tb.Delete(2, 9); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := string(tb.Bytes()); got != "herld!" {
		t.Errorf("Bytes() = %q, want %q", got, "herld!")
	}
}

func TestDeleteOutOfRange(t *testing.T) {
	tb := FromBytes([]byte("abc"))
	if err := tb.Delete(0, 4); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Delete(0,4) = %v, want ErrInvalidRange", err)
	}
	if err := tb.Delete(2, 1); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Delete(2,1) = %v, want ErrInvalidRange", err)
	}
}

// refModel applies the same edits to a flat byte slice for comparison.
type refModel struct {
	data []byte
}

func (m *refModel) insert(pos int, text []byte) {
	out := make([]byte, 0, len(m.data)+len(text))
	out = append(out, m.data[:pos]...)
	out = append(out, text...)
	out = append(out, m.data[pos:]...)
	m.data = out
}

func (m *refModel) delete(start, end int) {
	out := make([]byte, 0, len(m.data)-(end-start))
	out = append(out, m.data[:start]...)
	out = append(out, m.data[end:]...)
	m.data = out
}

// TestRandomEditsMatchReference applies randomized edit sequences and
// checks the table against the flat reference model after every step.
func TestRandomEditsMatchReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []byte("ab \nxyz")

	for trial := 0; trial < 50; trial++ {
		tb := FromBytes([]byte("seed\ntext\n"))
		model := &refModel{data: []byte("seed\ntext\n")}

		for step := 0; step < 200; step++ {
			if rng.Intn(2) == 0 || len(model.data) == 0 {
				pos := rng.Intn(len(model.data) + 1)
				n := rng.Intn(5) + 1
				text := make([]byte, n)
				for i := range text {
					text[i] = alphabet[rng.Intn(len(alphabet))]
				}
				if err := tb.Insert(pos, text); err != nil {
					t.Fatalf("trial %d step %d: Insert(%d): %v", trial, step, pos, err)
				}
				model.insert(pos, text)
			} else {
				start := rng.Intn(len(model.data) + 1)
				end := start + rng.Intn(len(model.data)-start+1)
				if err := tb.Delete(start, end); err != nil {
					t.Fatalf("trial %d step %d: Delete(%d,%d): %v", trial, step, start, end, err)
				}
				model.delete(start, end)
			}

			if rng.Intn(20) == 0 {
				tb.Compact()
			}

			if !bytes.Equal(tb.Bytes(), model.data) {
				t.Fatalf("trial %d step %d: content diverged:\n got %q\nwant %q",
					trial, step, tb.Bytes(), model.data)
			}
			if tb.Len() != len(model.data) {
				t.Fatalf("trial %d step %d: Len() = %d, want %d", trial, step, tb.Len(), len(model.data))
			}
			if want := bytes.Count(model.data, []byte("\n")); tb.NumLines() != want {
				t.Fatalf("trial %d step %d: NumLines() = %d, want %d", trial, step, tb.NumLines(), want)
			}
		}
	}
}

func TestCompactPreservesContent(t *testing.T) {
	tb := FromBytes([]byte("one\ntwo\nthree"))
	// Interior deletes leave adjacent same-buffer pieces behind.
	if err := tb.Delete(4, 8); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := tb.Insert(4, []byte("2\n")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	want := string(tb.Bytes())
	lines := tb.NumLines()

	tb.Compact()

	if got := string(tb.Bytes()); got != want {
		t.Errorf("content changed by Compact: got %q, want %q", got, want)
	}
	if tb.NumLines() != lines {
		t.Errorf("NumLines changed by Compact: got %d, want %d", tb.NumLines(), lines)
	}
}

func TestSnapshotRestore(t *testing.T) {
	tb := FromBytes([]byte("hello\nworld"))
	snap := tb.SnapshotPieces()

	if err := tb.Delete(0, 6); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := string(tb.Bytes()); got != "world" {
		t.Fatalf("Bytes() = %q, want %q", got, "world")
	}

	tb.RestorePieces(snap)
	if got := string(tb.Bytes()); got != "hello\nworld" {
		t.Errorf("Bytes() after restore = %q, want %q", got, "hello\nworld")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	tb := FromBytes([]byte("hello\n"))
	if err := tb.Insert(6, []byte("world\n")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !tb.Dirty() {
		t.Error("Dirty() should be true after insert")
	}

	if err := tb.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if tb.Dirty() {
		t.Error("Dirty() should be false after save")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello\nworld\n" {
		t.Errorf("saved %q, want %q", data, "hello\nworld\n")
	}
}

func TestFromFileMissing(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("FromFile on missing file should fail")
	}
}

func TestIndentWidthGuess(t *testing.T) {
	var doc bytes.Buffer
	for i := 0; i < 30; i++ {
		doc.WriteString("if x {\n")
		doc.WriteString("  y()\n")
		doc.WriteString("}\n")
	}
	tb := FromBytes(doc.Bytes())
	if got := tb.IndentWidth(); got != 2 {
		t.Errorf("IndentWidth() = %d, want 2", got)
	}

	if got := FromBytes([]byte("flat\nlines\nonly\n")).IndentWidth(); got != 4 {
		t.Errorf("IndentWidth() fallback = %d, want 4", got)
	}
}

func TestSetFallbackIndentWidth(t *testing.T) {
	tb := FromBytes([]byte("flat\nlines\nonly\n"))
	tb.SetFallbackIndentWidth(8)
	if got := tb.IndentWidth(); got != 8 {
		t.Errorf("IndentWidth() after fallback = %d, want 8", got)
	}
	tb.SetFallbackIndentWidth(0)
	if got := tb.IndentWidth(); got != 8 {
		t.Errorf("IndentWidth() after zero fallback = %d, want 8", got)
	}

	var doc bytes.Buffer
	for i := 0; i < 30; i++ {
		doc.WriteString("if x {\n")
		doc.WriteString("  y()\n")
		doc.WriteString("}\n")
	}
	guessed := FromBytes(doc.Bytes())
	guessed.SetFallbackIndentWidth(8)
	if got := guessed.IndentWidth(); got != 2 {
		t.Errorf("IndentWidth() guessed = %d, want 2 despite fallback", got)
	}
}
