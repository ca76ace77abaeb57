package buffer

import (
	"github.com/tverras/kiln/internal/engine/cursor"
	"github.com/tverras/kiln/internal/lsp"
)

// maxCompletionRows is the page size for completion selection
// scrolling.
const maxCompletionRows = 10

// requestCompletion asks the server for completions at position and
// records the request on the cursor.
func (b *Buffer) requestCompletion(cur *cursor.Cursor, position ByteOffset) {
	if b.server == nil {
		return
	}
	line := b.Table.LineIndex(position)
	col := b.Table.ColIndex(position)
	if id, ok := b.server.RequestCompletion(line, col); ok {
		cur.Request = &cursor.CompletionRequest{ID: id, Position: position}
	}
}

// maybeRequestCompletion requests completion after a typed character
// when the server lists it as a trigger.
func (b *Buffer) maybeRequestCompletion(cur *cursor.Cursor, typed byte, position ByteOffset) {
	if b.server == nil || !b.server.IsTriggerChar(typed) {
		return
	}
	b.requestCompletion(cur, position)
}

// discardCompletion drops the cursor's completion request and the
// server-side saved result.
func (b *Buffer) discardCompletion(c *cursor.Cursor) {
	if c.Request == nil {
		return
	}
	if b.server != nil {
		b.server.DiscardCompletion(c.Request.ID)
	}
	c.Request = nil
}

// StartCompletion requests completion at every cursor unconditionally
// (Ctrl-Space).
func (b *Buffer) StartCompletion() {
	if b.server == nil {
		return
	}
	for i := range b.Cursors {
		c := &b.Cursors[i]
		b.requestCompletion(c, c.Position)
	}
}

// HasPendingCompletion reports whether any cursor has an answered
// completion request.
func (b *Buffer) HasPendingCompletion() bool {
	if b.server == nil {
		return false
	}
	for i := range b.Cursors {
		if r := b.Cursors[i].Request; r != nil {
			if _, ok := b.server.Completion(r.ID); ok {
				return true
			}
		}
	}
	return false
}

// CompletionNext moves every completion selection down one entry,
// scrolling the popup when the selection leaves the visible page.
func (b *Buffer) CompletionNext() {
	for i := range b.Cursors {
		c := &b.Cursors[i]
		if c.Request == nil || b.server == nil {
			continue
		}
		list, ok := b.server.Completion(c.Request.ID)
		if !ok || len(list.Items) == 0 {
			continue
		}
		if c.Request.SelectionIndex < len(list.Items)-1 {
			c.Request.SelectionIndex++
		}
		if c.Request.SelectionIndex >= c.Request.SelectionViewOffset+maxCompletionRows {
			c.Request.SelectionViewOffset++
		}
	}
}

// CompletionPrev moves every completion selection up one entry.
func (b *Buffer) CompletionPrev() {
	for i := range b.Cursors {
		c := &b.Cursors[i]
		if c.Request == nil {
			continue
		}
		if c.Request.SelectionIndex > 0 {
			c.Request.SelectionIndex--
		}
		if c.Request.SelectionIndex < c.Request.SelectionViewOffset {
			c.Request.SelectionViewOffset--
		}
	}
}

// Complete applies the selected completion item at every cursor: the
// item's text-edit range is deleted (widened by any characters typed
// since the request), then the new text inserted.
func (b *Buffer) Complete() {
	cursor.ForEachRebalance(b.Cursors, func(cur *cursor.Cursor) {
		item, ok := b.completionItem(cur)
		if !ok || item.TextEdit == nil {
			return
		}
		edit := item.TextEdit
		start, ok := b.Table.OffsetFromLineCol(int(edit.Range.Start.Line), int(edit.Range.Start.Character))
		if !ok {
			start = cur.Position
		}
		end, ok := b.Table.OffsetFromLineCol(int(edit.Range.End.Line), int(edit.Range.End.Character))
		if !ok {
			end = cur.Position
		}
		// Widen by the distance typed since the request was made.
		end += cur.Position - cur.Request.Position
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

	cursor.ForEachRebalance(b.Cursors, func(cur *cursor.Cursor) {
		item, ok := b.completionItem(cur)
		if ok && item.TextEdit != nil {
			text := []byte(item.TextEdit.NewText)
			if err := b.Table.Insert(cur.Position, text); err == nil {
				b.notifyInserted(cur.Position, text)
				cur.Position += len(text)
			}
		}
		b.discardCompletion(cur)
	})

	b.finishCommand()
}

// completionItem returns the item the cursor's completion selection
// points at.
func (b *Buffer) completionItem(cur *cursor.Cursor) (lsp.CompletionItem, bool) {
	if cur.Request == nil || b.server == nil {
		return lsp.CompletionItem{}, false
	}
	list, ok := b.server.Completion(cur.Request.ID)
	if !ok || len(list.Items) == 0 {
		return lsp.CompletionItem{}, false
	}
	index := cur.Request.SelectionIndex
	if index >= len(list.Items) {
		index = len(list.Items) - 1
	}
	return list.Items[index], true
}
