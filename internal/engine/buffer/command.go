package buffer

import (
	"github.com/tverras/kiln/internal/engine/cursor"
)

// InsertCursorAbove clones the topmost cursor one line up.
func (b *Buffer) InsertCursorAbove() {
	first := 0
	for i := range b.Cursors {
		if b.Cursors[i].Position < b.Cursors[first].Position {
			first = i
		}
	}
	c := b.Cursors[first].Clone()
	c.MoveUp(b.Table, 1)
	b.Cursors = append(b.Cursors, c)
	b.finishCommand()
}

// InsertCursorBelow clones the bottommost cursor one line down.
func (b *Buffer) InsertCursorBelow() {
	last := 0
	for i := range b.Cursors {
		if b.Cursors[i].Position > b.Cursors[last].Position {
			last = i
		}
	}
	c := b.Cursors[last].Clone()
	c.MoveDown(b.Table, 1)
	b.Cursors = append(b.Cursors, c)
	b.finishCommand()
}

// InsertChar inserts c at every cursor and advances each past the
// inserted byte.
func (b *Buffer) InsertChar(c byte) {
	text := []byte{c}
	cursor.ForEachRebalance(b.Cursors, func(cur *cursor.Cursor) {
		if err := b.Table.Insert(cur.Position, text); err != nil {
			return
		}
		b.notifyInserted(cur.Position, text)
		b.maybeRequestCompletion(cur, c, cur.Position+1)
		cur.Position++
	})
	b.finishCommand()
}

// DeleteCharBack deletes the byte before every cursor (backspace).
func (b *Buffer) DeleteCharBack() {
	cursor.ForEachRebalance(b.Cursors, func(cur *cursor.Cursor) {
		if cur.Position == 0 {
			return
		}
		newPosition := cur.Position - 1
		b.notifyDeleting(newPosition, cur.Position)
		if err := b.Table.Delete(newPosition, cur.Position); err != nil {
			return
		}
		b.notifyDeleted(newPosition)
		cur.Position = newPosition
	})
	b.finishCommand()
}

// CutSelection deletes every cursor's selected span, inclusive of
// both endpoints, and collapses the cursor to the span's start.
func (b *Buffer) CutSelection() {
	cursor.ForEachRebalance(b.Cursors, func(cur *cursor.Cursor) {
		start := cur.SelectionStart()
		end := cur.SelectionEnd() + 1
		if n := b.Table.Len(); end > n {
			end = n
		}
		if start >= end {
			return
		}
		b.notifyDeleting(start, end)
		if err := b.Table.Delete(start, end); err != nil {
			return
		}
		b.notifyDeleted(start)
		cur.Position = start
		cur.Anchor = start
	})
	b.finishCommand()
}

// CutLineSelection extends every selection to whole lines and cuts
// it.
func (b *Buffer) CutLineSelection() {
	b.Motion(Motion{Kind: MotionExtendSelection})
	b.CutSelection()
}

// ReplaceChar replaces the byte under every cursor with c.
func (b *Buffer) ReplaceChar(c byte) {
	b.CutSelection()
	b.InsertChar(c)
	b.Motion(Motion{Kind: MotionBackward, Count: 1})
}

// Undo restores the previous buffer state, pushing the current one
// onto the redo stack.
func (b *Buffer) Undo() {
	b.restoreState(&b.undoStack, &b.redoStack)
}

// Redo restores a state undone by Undo.
func (b *Buffer) Redo() {
	b.restoreState(&b.redoStack, &b.undoStack)
}

func (b *Buffer) restoreState(from, to *[]state) {
	if n := len(*from); n > 0 {
		st := (*from)[n-1]
		*from = (*from)[:n-1]
		*to = append(*to, b.captureState())
		b.Table.RestorePieces(st.pieces)
		b.Cursors = cloneCursors(st.cursors)
	}
	if b.server != nil {
		b.server.DidReload(b.Table.Bytes())
	}
	if b.highlighter != nil {
		b.highlighter.Reload(b.Table)
	}
	b.finishCommand()
}

// PushUndoState records the current state before a structural edit.
// Cursors are recorded at their anchors so undo restores the
// selection start.
func (b *Buffer) PushUndoState() {
	st := b.captureState()
	for i := range st.cursors {
		st.cursors[i].Position = st.cursors[i].Anchor
	}
	b.undoStack = append(b.undoStack, st)
}

func (b *Buffer) captureState() state {
	return state{
		pieces:  b.Table.SnapshotPieces(),
		cursors: cloneCursors(b.Cursors),
	}
}

func cloneCursors(cursors []cursor.Cursor) []cursor.Cursor {
	out := make([]cursor.Cursor, len(cursors))
	for i := range cursors {
		out[i] = cursors[i].Clone()
	}
	return out
}

// finishCommand applies the post-command cursor discipline: normal
// mode keeps cursors off newlines, stale completion requests are
// dropped, and anchors follow positions outside visual modes.
func (b *Buffer) finishCommand() {
	for i := range b.Cursors {
		c := &b.Cursors[i]

		if b.Mode == ModeNormal && c.AtLineEnd(b.Table) {
			c.MoveBackward(b.Table, 1)
		}

		// A cursor that moved behind its completion request can no
		// longer accept it.
		if b.Mode == ModeInsert && c.Request != nil && c.Request.Position > c.Position {
			b.discardCompletion(c)
		}

		if b.Mode == ModeNormal || b.Mode == ModeInsert {
			c.ResetAnchor()
		}
		c.UnstickCol(b.Table)
	}
}
