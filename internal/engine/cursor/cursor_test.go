package cursor

import (
	"testing"

	"github.com/tverras/kiln/internal/engine/piecetable"
)

func table(t *testing.T, content string) *piecetable.Table {
	t.Helper()
	return piecetable.FromBytes([]byte(content))
}

func TestMoveForwardClampsAtNewline(t *testing.T) {
	pt := table(t, "abc\ndef")

	c := At(0)
	c.MoveForward(pt, 2)
	if c.Position != 2 {
		t.Errorf("Position = %d, want 2", c.Position)
	}

	// Clamped onto the newline, not past it.
	c.MoveForward(pt, 10)
	if c.Position != 3 {
		t.Errorf("Position = %d, want 3", c.Position)
	}

	// On the newline byte forward motion is a no-op.
	c.MoveForward(pt, 1)
	if c.Position != 3 {
		t.Errorf("Position = %d, want 3 after no-op", c.Position)
	}
}

func TestMoveBackwardClampsAtLineStart(t *testing.T) {
	pt := table(t, "abc\ndef")

	c := At(6)
	c.MoveBackward(pt, 1)
	if c.Position != 5 {
		t.Errorf("Position = %d, want 5", c.Position)
	}
	c.MoveBackward(pt, 10)
	if c.Position != 4 {
		t.Errorf("Position = %d, want 4", c.Position)
	}
	c.MoveBackward(pt, 1)
	if c.Position != 4 {
		t.Errorf("Position = %d, want 4 after no-op", c.Position)
	}
}

func TestMoveVertical(t *testing.T) {
	pt := table(t, "alpha\nhi\ngamma")

	c := At(4) // 'a' at end of "alpha", col 4
	c.StickCol(pt)

	c.MoveDown(pt, 1)
	if c.Position != 7 { // "hi" clamps to col 1
		t.Errorf("Position = %d, want 7", c.Position)
	}
	c.StickCol(pt)

	c.MoveDown(pt, 1)
	if c.Position != 13 { // sticky column restores col 4 on "gamma"
		t.Errorf("Position = %d, want 13", c.Position)
	}
	c.StickCol(pt)

	c.MoveUp(pt, 2)
	if c.Position != 4 {
		t.Errorf("Position = %d, want 4", c.Position)
	}
}

func TestMoveVerticalEmptyLine(t *testing.T) {
	pt := table(t, "abc\n\ndef")

	c := At(2)
	c.StickCol(pt)
	c.MoveDown(pt, 1)
	if c.Position != 4 { // empty line clamps to its start
		t.Errorf("Position = %d, want 4", c.Position)
	}
}

func TestMoveVerticalIdempotentClamp(t *testing.T) {
	pt := table(t, "one\ntwo\nthree")

	single := At(1)
	single.MoveDown(pt, 100)

	repeated := At(1)
	for i := 0; i < 100; i++ {
		repeated.MoveDown(pt, 1)
	}

	if single.Position != repeated.Position {
		t.Errorf("single clamped motion = %d, repeated = %d", single.Position, repeated.Position)
	}

	for i := 0; i < 100; i++ {
		repeated.MoveUp(pt, 1)
	}
	if repeated.Position > pt.Len() {
		t.Errorf("Position = %d beyond document", repeated.Position)
	}
}

func TestMoveForwardByWord(t *testing.T) {
	tests := []struct {
		name    string
		content string
		start   int
		want    int
	}{
		{"word to word", "foo bar", 0, 4},
		{"word to punctuation", "foo(bar)", 0, 3},
		{"punctuation to word", "(foo", 0, 1},
		{"mid word", "foo bar", 1, 4},
		{"across newline", "foo\nbar", 0, 4},
		{"empty line is a boundary", "foo\n\nbar", 0, 4},
		{"no boundary lands at end", "foo", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := table(t, tt.content)
			c := At(tt.start)
			c.MoveForwardByWord(pt)
			if c.Position != tt.want {
				t.Errorf("Position = %d, want %d", c.Position, tt.want)
			}
		})
	}
}

func TestMoveBackwardByWord(t *testing.T) {
	tests := []struct {
		name    string
		content string
		start   int
		want    int
	}{
		{"to start of previous word", "foo bar", 4, 0},
		{"mid word to word start", "foo bar", 6, 4},
		{"punctuation boundary", "foo(bar", 6, 4},
		{"no boundary lands at start", "foo", 2, 0},
		{"at start is a no-op", "foo", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := table(t, tt.content)
			c := At(tt.start)
			c.MoveBackwardByWord(pt)
			if c.Position != tt.want {
				t.Errorf("Position = %d, want %d", c.Position, tt.want)
			}
		})
	}
}

func TestLineMotions(t *testing.T) {
	pt := table(t, "  hello\nworld")

	c := At(5)
	c.MoveToEndOfLine(pt)
	if c.Position != 6 {
		t.Errorf("end of line: Position = %d, want 6", c.Position)
	}

	c.MoveToStartOfLine(pt)
	if c.Position != 0 {
		t.Errorf("start of line: Position = %d, want 0", c.Position)
	}

	c.MoveToFirstNonBlankChar(pt)
	if c.Position != 2 {
		t.Errorf("first non-blank: Position = %d, want 2", c.Position)
	}
}

func TestFileMotions(t *testing.T) {
	pt := table(t, "abc\ndef")

	c := At(5)
	c.MoveToStartOfFile()
	if c.Position != 0 {
		t.Errorf("start of file: Position = %d, want 0", c.Position)
	}
	c.MoveToEndOfFile(pt)
	if c.Position != 6 {
		t.Errorf("end of file: Position = %d, want 6", c.Position)
	}
}

func TestCharSearch(t *testing.T) {
	pt := table(t, "hello world\nnext")

	tests := []struct {
		name string
		move func(c *Cursor)
		from int
		want int
	}{
		{"forward inclusive", func(c *Cursor) { c.MoveToCharInc(pt, 'o') }, 0, 4},
		{"forward exclusive", func(c *Cursor) { c.MoveToCharExc(pt, 'o') }, 0, 3},
		{"forward missing is a no-op", func(c *Cursor) { c.MoveToCharInc(pt, 'z') }, 0, 0},
		{"forward stops at newline", func(c *Cursor) { c.MoveToCharInc(pt, 'n') }, 8, 8},
		{"backward inclusive", func(c *Cursor) { c.MoveBackToCharInc(pt, 'e') }, 4, 1},
		{"backward exclusive", func(c *Cursor) { c.MoveBackToCharExc(pt, 'e') }, 4, 2},
		{"backward stops at newline", func(c *Cursor) { c.MoveBackToCharInc(pt, 'h') }, 13, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := At(tt.from)
			tt.move(&c)
			if c.Position != tt.want {
				t.Errorf("Position = %d, want %d", c.Position, tt.want)
			}
		})
	}
}

func TestAtLineEnd(t *testing.T) {
	pt := table(t, "ab\nc")

	for _, tt := range []struct {
		pos  int
		want bool
	}{
		{0, false},
		{2, true},  // newline byte
		{3, false}, // 'c'
		{4, true},  // past end
	} {
		c := At(tt.pos)
		if got := c.AtLineEnd(pt); got != tt.want {
			t.Errorf("AtLineEnd at %d = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestCloneCopiesRequest(t *testing.T) {
	c := At(3)
	c.Request = &CompletionRequest{ID: 7, Position: 3}

	clone := c.Clone()
	clone.Request.SelectionIndex = 5

	if c.Request.SelectionIndex != 0 {
		t.Error("Clone shares the completion request")
	}
}
