package buffer

import (
	"github.com/google/uuid"

	"github.com/tverras/kiln/internal/engine/cursor"
	"github.com/tverras/kiln/internal/engine/piecetable"
	"github.com/tverras/kiln/internal/language"
	"github.com/tverras/kiln/internal/lsp"
)

// ByteOffset is an alias for piecetable.ByteOffset for convenience.
type ByteOffset = piecetable.ByteOffset

// Mode is the vi editing mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeVisual
	ModeVisualLine
)

// String returns the mode name for the status line.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	case ModeVisual:
		return "VISUAL"
	case ModeVisualLine:
		return "VISUAL LINE"
	default:
		return "UNKNOWN"
	}
}

// Highlighter receives edit notifications so cached highlight spans
// can be rebalanced and the affected chunk re-queued. Implemented by
// the highlight cache; a nil Highlighter disables highlighting.
type Highlighter interface {
	InsertRebalance(t *piecetable.Table, position ByteOffset, count int)
	DeleteRebalance(t *piecetable.Table, position, end ByteOffset)
	Refresh(t *piecetable.Table, position ByteOffset)
	Reload(t *piecetable.Table)
}

// Buffer is one open document.
type Buffer struct {
	ID       uuid.UUID
	Path     string
	URI      string
	Language *language.Language
	Table    *piecetable.Table
	Cursors  []cursor.Cursor
	Mode     Mode

	server      *lsp.Client
	highlighter Highlighter

	undoStack []state
	redoStack []state
	input     string
}

// state is one undo/redo entry: the piece list and the cursors as
// they were before a structural command.
type state struct {
	pieces  []piecetable.Piece
	cursors []cursor.Cursor
}

// Open loads the file at path into a new buffer with one cursor at
// offset 0.
func Open(path string) (*Buffer, error) {
	table, err := piecetable.FromFile(path)
	if err != nil {
		return nil, err
	}
	return &Buffer{
		ID:       uuid.New(),
		Path:     path,
		URI:      "file://" + path,
		Language: language.FromPath(path),
		Table:    table,
		Cursors:  []cursor.Cursor{cursor.New()},
		Mode:     ModeNormal,
	}, nil
}

// FromBytes builds an in-memory buffer, used for scratch buffers and
// tests.
func FromBytes(path string, data []byte) *Buffer {
	return &Buffer{
		ID:       uuid.New(),
		Path:     path,
		URI:      "file://" + path,
		Language: language.FromPath(path),
		Table:    piecetable.FromBytes(data),
		Cursors:  []cursor.Cursor{cursor.New()},
		Mode:     ModeNormal,
	}
}

// SetServer attaches a language-server client and announces the
// document to it.
func (b *Buffer) SetServer(server *lsp.Client) {
	b.server = server
	if server != nil {
		server.DidOpen(b.Table.Bytes())
	}
}

// Server returns the attached language-server client, or nil.
func (b *Buffer) Server() *lsp.Client {
	return b.server
}

// SetHighlighter attaches the highlight cache.
func (b *Buffer) SetHighlighter(h Highlighter) {
	b.highlighter = h
}

// Save writes the document back to its path.
func (b *Buffer) Save() error {
	return b.Table.SaveTo(b.Path)
}

// mergeCursors re-sorts the cursor list by position, drops
// duplicates, and collapses overlapping cursors. Add-cursor commands
// append out of order, so the list must be sorted before the
// adjacent-pair merge below. Cursors all move together, so overlaps
// can only happen in the same direction.
func (b *Buffer) mergeCursors() {
	if len(b.Cursors) <= 1 {
		return
	}

	b.Cursors = cursor.SortAndDedupe(b.Cursors)
	if len(b.Cursors) <= 1 {
		return
	}

	merged := b.Cursors[:0:0]
	current := b.Cursors[0]
	for i := 1; i < len(b.Cursors); i++ {
		c := b.Cursors[i]
		if cursor.Overlapping(&current, &c) {
			if c.MovingForward() {
				current.Position = c.Position
			} else {
				current.Anchor = c.Anchor
			}
		} else {
			merged = append(merged, current)
			current = c
		}
	}
	b.Cursors = append(merged, current)
}

// notifyInserted fans an insert out to the highlighter and the
// language server. Called after the table mutation; position still
// addresses the first inserted byte.
func (b *Buffer) notifyInserted(position ByteOffset, text []byte) {
	if b.highlighter != nil {
		b.highlighter.InsertRebalance(b.Table, position, len(text))
		b.highlighter.Refresh(b.Table, position)
	}
	if b.server != nil {
		line := b.Table.LineIndex(position)
		col := b.Table.ColIndex(position)
		b.server.DidInsert(line, col, text)
	}
}

// notifyDeleting fans a pending delete out. Called before the table
// mutation so line/col addresses still describe the doomed span.
func (b *Buffer) notifyDeleting(start, end ByteOffset) {
	if b.highlighter != nil {
		b.highlighter.DeleteRebalance(b.Table, start, end)
	}
	if b.server != nil {
		startLine, startCol := b.Table.LineIndex(start), b.Table.ColIndex(start)
		endLine, endCol := b.Table.LineIndex(end), b.Table.ColIndex(end)
		b.server.DidDelete(startLine, startCol, endLine, endCol)
	}
}

// notifyDeleted re-queues the chunk containing the deletion once the
// table has mutated.
func (b *Buffer) notifyDeleted(start ByteOffset) {
	if b.highlighter != nil {
		b.highlighter.Refresh(b.Table, start)
	}
}
