// Package cursor implements the caret/selection model and all vi-style
// motions over a piece table.
//
// A Cursor is a (Position, Anchor) pair of byte offsets plus a sticky
// column remembered across vertical motions. Motions take the table as
// an argument rather than storing a reference; cursors never outlive
// the buffer that owns them.
//
// Multiple cursors are kept in a plain slice owned by the buffer.
// ForEachRebalance applies an edit per cursor and shifts the others so
// each keeps pointing at the same content after the edit.
package cursor
