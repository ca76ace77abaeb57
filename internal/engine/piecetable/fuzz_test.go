package piecetable

import (
	"bytes"
	"testing"
)

// FuzzInsert checks inserts against direct slice splicing.
func FuzzInsert(f *testing.F) {
	f.Add("hello", 0, "x")
	f.Add("hello", 5, "x")
	f.Add("hello\nworld", 3, "a\nb")
	f.Add("", 0, "test")

	f.Fuzz(func(t *testing.T, initial string, offset int, insert string) {
		// The table normalizes on load; use normalized bytes as the base.
		tb := FromBytes([]byte(initial))
		base := tb.Bytes()

		if offset < 0 {
			offset = 0
		}
		if offset > len(base) {
			offset = len(base)
		}

		if err := tb.Insert(offset, []byte(insert)); err != nil {
			t.Fatalf("Insert(%d): %v", offset, err)
		}

		want := append(append(append([]byte(nil), base[:offset]...), insert...), base[offset:]...)
		if !bytes.Equal(tb.Bytes(), want) {
			t.Errorf("insert mismatch at offset %d", offset)
		}
		if want := bytes.Count(want, []byte("\n")); tb.NumLines() != want {
			t.Errorf("NumLines() = %d, want %d", tb.NumLines(), want)
		}
	})
}

// FuzzDelete checks deletes against direct slice splicing.
func FuzzDelete(f *testing.F) {
	f.Add("hello world", 0, 5)
	f.Add("hello world", 6, 11)
	f.Add("a\nb\nc", 1, 4)
	f.Add("x", 0, 1)

	f.Fuzz(func(t *testing.T, initial string, start, end int) {
		tb := FromBytes([]byte(initial))
		base := tb.Bytes()

		if start < 0 {
			start = 0
		}
		if start > len(base) {
			start = len(base)
		}
		if end < start {
			end = start
		}
		if end > len(base) {
			end = len(base)
		}

		if err := tb.Delete(start, end); err != nil {
			t.Fatalf("Delete(%d,%d): %v", start, end, err)
		}

		want := append(append([]byte(nil), base[:start]...), base[end:]...)
		if !bytes.Equal(tb.Bytes(), want) {
			t.Errorf("delete mismatch for [%d,%d)", start, end)
		}
	})
}
