package cursor

import (
	"github.com/tverras/kiln/internal/engine/piecetable"
	"github.com/tverras/kiln/internal/engine/textutil"
)

// ByteOffset is an alias for piecetable.ByteOffset for convenience.
type ByteOffset = piecetable.ByteOffset

// CompletionRequest tracks an in-flight completion triggered at a
// cursor: the request id assigned by the language server, the position
// the completion was requested at, and the selection state of the
// completion popup.
type CompletionRequest struct {
	ID                  int64
	Position            ByteOffset
	SelectionIndex      int
	SelectionViewOffset int
}

// Cursor is a caret or selection endpoint. Position is where motions
// act and where insertion happens; Anchor marks the other end of the
// selection (the selection is empty when Position == Anchor). The
// cached column preserves horizontal intent across vertical motions
// through short lines.
type Cursor struct {
	Position ByteOffset
	Anchor   ByteOffset
	Request  *CompletionRequest

	cachedCol int
}

// New returns a cursor at offset 0.
func New() Cursor {
	return Cursor{}
}

// At returns a cursor with position and anchor at the given offset.
func At(position ByteOffset) Cursor {
	return Cursor{Position: position, Anchor: position}
}

// Clone returns a deep copy, including any completion request.
func (c Cursor) Clone() Cursor {
	clone := c
	if c.Request != nil {
		req := *c.Request
		clone.Request = &req
	}
	return clone
}

// ResetAnchor collapses the selection onto the current position.
func (c *Cursor) ResetAnchor() {
	c.Anchor = c.Position
}

// HasSelection reports whether the cursor spans more than one offset.
func (c *Cursor) HasSelection() bool {
	return c.Position != c.Anchor
}

// MovingForward reports whether the position leads the anchor.
func (c *Cursor) MovingForward() bool {
	return c.Position >= c.Anchor
}

// SelectionStart returns the smaller of position and anchor.
func (c *Cursor) SelectionStart() ByteOffset {
	if c.Position < c.Anchor {
		return c.Position
	}
	return c.Anchor
}

// SelectionEnd returns the larger of position and anchor.
func (c *Cursor) SelectionEnd() ByteOffset {
	if c.Position > c.Anchor {
		return c.Position
	}
	return c.Anchor
}

// StickCol raises the cached column to the current column. Called
// after vertical motions so ragged line lengths do not forget the
// intended column.
func (c *Cursor) StickCol(t *piecetable.Table) {
	if col := t.ColIndex(c.Position); col > c.cachedCol {
		c.cachedCol = col
	}
}

// UnstickCol resets the cached column to the current column. Called
// after any horizontal motion.
func (c *Cursor) UnstickCol(t *piecetable.Table) {
	c.cachedCol = t.ColIndex(c.Position)
}

// CachedCol returns the sticky column.
func (c *Cursor) CachedCol() int {
	return c.cachedCol
}

// LineCol returns the cursor's (line, column) address.
func (c *Cursor) LineCol(t *piecetable.Table) (line, col int) {
	return t.LineIndex(c.Position), t.ColIndex(c.Position)
}

// AtLineEnd reports whether the cursor sits on a newline byte or past
// the last character of the document.
func (c *Cursor) AtLineEnd(t *piecetable.Table) bool {
	b, ok := t.ByteAt(c.Position)
	return !ok || b == '\n'
}

// MoveUp moves the cursor up count lines, clamping the column to the
// shorter of the intended column and the target line's last valid
// column. At the top of the file the cursor does not move.
func (c *Cursor) MoveUp(t *piecetable.Table, count int) {
	c.moveVertical(t, -count)
}

// MoveDown moves the cursor down count lines with the same column
// clamping as MoveUp. At the bottom of the file the cursor does not
// move.
func (c *Cursor) MoveDown(t *piecetable.Table, count int) {
	c.moveVertical(t, count)
}

func (c *Cursor) moveVertical(t *piecetable.Table, delta int) {
	line := t.LineIndex(c.Position)
	target := line + delta
	if last := t.NumLines(); target > last {
		target = last
	}
	if target < 0 {
		target = 0
	}
	if target == line {
		return
	}

	dest, ok := t.LineAtIndex(target)
	if !ok {
		return
	}

	col := t.ColIndex(c.Position)
	if c.cachedCol > col {
		col = c.cachedCol
	}
	if maxCol := dest.Length - 1; col > maxCol {
		col = maxCol
	}
	if col < 0 {
		col = 0
	}
	c.Position = dest.Start + col
}

// MoveForward moves the cursor forward up to count characters, never
// past the current line's newline. On a newline byte or at end of
// file it is a no-op.
func (c *Cursor) MoveForward(t *piecetable.Table, count int) {
	b, ok := t.ByteAt(c.Position)
	if !ok || b == '\n' {
		return
	}
	line, ok := t.LineAtPos(c.Position)
	if !ok {
		return
	}
	c.Position += count
	if c.Position > line.End {
		c.Position = line.End
	}
}

// MoveBackward moves the cursor backward up to count characters,
// never past the start of the current line.
func (c *Cursor) MoveBackward(t *piecetable.Table, count int) {
	line, ok := t.LineAtPos(c.Position)
	if !ok {
		return
	}
	c.Position -= count
	if c.Position < line.Start {
		c.Position = line.Start
	}
}

// MoveForwardByWord advances to the next word boundary: the first
// transition between character classes that does not land on
// whitespace. Two consecutive newlines (an empty line) count as a
// boundary. With no boundary ahead the cursor lands on the last
// character of the document.
func (c *Cursor) MoveForwardByWord(t *piecetable.Table) {
	it := t.IterAt(c.Position)
	if !it.Next() {
		return
	}
	prev := it.Byte()
	pos := c.Position
	for it.Next() {
		b := it.Byte()
		pos++
		cls := textutil.Classify(b)
		boundary := cls != textutil.Classify(prev) && cls != textutil.ClassWhitespace
		if boundary || (prev == '\n' && b == '\n') {
			c.Position = pos
			return
		}
		prev = b
	}
	if n := t.Len(); n > 0 {
		c.Position = n - 1
	}
}

// MoveBackwardByWord moves to the start of the previous word using
// the same boundary rule as MoveForwardByWord. With no boundary
// behind the cursor lands on offset 0.
func (c *Cursor) MoveBackwardByWord(t *piecetable.Table) {
	if c.Position == 0 {
		return
	}
	it := t.IterReverseAt(c.Position - 1)
	if !it.Next() {
		c.Position = 0
		return
	}
	cur := it.Byte()
	pos := c.Position - 1
	for it.Next() {
		below := it.Byte()
		cls := textutil.Classify(cur)
		boundary := cls != textutil.Classify(below) && cls != textutil.ClassWhitespace
		if boundary || (cur == '\n' && below == '\n') {
			c.Position = pos
			return
		}
		cur = below
		pos--
	}
	c.Position = 0
}

// MoveToStartOfLine moves to column 0 of the current line.
func (c *Cursor) MoveToStartOfLine(t *piecetable.Table) {
	if line, ok := t.LineAtPos(c.Position); ok {
		c.Position = line.Start
	}
}

// MoveToEndOfLine moves to the last character of the current line
// (the line start when the line is empty).
func (c *Cursor) MoveToEndOfLine(t *piecetable.Table) {
	line, ok := t.LineAtPos(c.Position)
	if !ok {
		return
	}
	c.Position = line.End - 1
	if c.Position < line.Start {
		c.Position = line.Start
	}
}

// MoveToFirstNonBlankChar moves to the first byte of the current line
// that is not horizontal whitespace.
func (c *Cursor) MoveToFirstNonBlankChar(t *piecetable.Table) {
	line, ok := t.LineAtPos(c.Position)
	if !ok {
		return
	}
	pos := line.Start
	it := t.IterAt(pos)
	for it.Next() {
		b := it.Byte()
		if b == '\n' || !textutil.IsSpace(b) {
			break
		}
		pos++
	}
	if pos >= line.End && line.End > line.Start {
		pos = line.End - 1
	}
	c.Position = pos
}

// MoveToStartOfFile moves to offset 0.
func (c *Cursor) MoveToStartOfFile() {
	c.Position = 0
	c.cachedCol = 0
}

// MoveToEndOfFile moves to the last character of the document.
func (c *Cursor) MoveToEndOfFile(t *piecetable.Table) {
	if n := t.Len(); n > 0 {
		c.Position = n - 1
	} else {
		c.Position = 0
	}
}

// MoveToCharInc moves forward onto the next occurrence of target on
// the current line. No-op when target is not found before the
// newline.
func (c *Cursor) MoveToCharInc(t *piecetable.Table, target byte) {
	if count := c.charsUntil(t, target); count > 0 {
		c.MoveForward(t, count)
	}
}

// MoveToCharExc moves forward to just before the next occurrence of
// target on the current line.
func (c *Cursor) MoveToCharExc(t *piecetable.Table, target byte) {
	if count := c.charsUntil(t, target); count > 1 {
		c.MoveForward(t, count-1)
	}
}

// MoveBackToCharInc moves backward onto the previous occurrence of
// target on the current line.
func (c *Cursor) MoveBackToCharInc(t *piecetable.Table, target byte) {
	if count := c.charsUntilRev(t, target); count > 0 {
		c.MoveBackward(t, count)
	}
}

// MoveBackToCharExc moves backward to just after the previous
// occurrence of target on the current line.
func (c *Cursor) MoveBackToCharExc(t *piecetable.Table, target byte) {
	if count := c.charsUntilRev(t, target); count > 1 {
		c.MoveBackward(t, count-1)
	}
}

// charsUntil counts characters from the cursor to the next occurrence
// of target on the current line, or 0 when absent.
func (c *Cursor) charsUntil(t *piecetable.Table, target byte) int {
	it := t.IterAt(c.Position + 1)
	count := 0
	for it.Next() {
		b := it.Byte()
		count++
		if b == target {
			return count
		}
		if b == '\n' {
			break
		}
	}
	return 0
}

// charsUntilRev counts characters from the cursor back to the
// previous occurrence of target on the current line, or 0 when
// absent.
func (c *Cursor) charsUntilRev(t *piecetable.Table, target byte) int {
	if c.Position == 0 {
		return 0
	}
	it := t.IterReverseAt(c.Position - 1)
	count := 0
	for it.Next() {
		b := it.Byte()
		count++
		if b == target {
			return count
		}
		if b == '\n' {
			break
		}
	}
	return 0
}
