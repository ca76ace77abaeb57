package piecetable

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tverras/kiln/internal/engine/textutil"
)

// Errors returned by table operations.
var (
	// ErrInvalidRange indicates an insert or delete position outside the
	// valid document range.
	ErrInvalidRange = errors.New("invalid range")
)

// ByteOffset is a zero-based byte position into the conceptual
// concatenation of all pieces in order.
type ByteOffset = int

// bufferTag identifies which backing buffer a piece references.
type bufferTag uint8

const (
	tagOriginal bufferTag = iota
	tagAdd
)

// Piece references a contiguous span of one backing buffer.
// linebreaks holds the offsets of '\n' bytes relative to start; every
// entry lies in [0, length) and the slice is strictly increasing.
type Piece struct {
	tag        bufferTag
	start      ByteOffset
	length     int
	linebreaks []int
}

// clone returns a deep copy of the piece.
func (p Piece) clone() Piece {
	cp := p
	cp.linebreaks = append([]int(nil), p.linebreaks...)
	return cp
}

// Table is a piece-table text buffer.
type Table struct {
	pieces        []Piece
	original      []byte
	add           []byte
	indentWidth   int
	indentGuessed bool
	dirty         bool
}

// New returns an empty table.
func New() *Table {
	return &Table{indentWidth: defaultIndentWidth}
}

// FromBytes builds a table from in-memory content. The content goes
// through the same CRLF/CR normalization as file loading.
func FromBytes(data []byte) *Table {
	t := New()
	t.load(data)
	return t
}

// FromReader builds a table from a byte stream.
func FromReader(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	t := New()
	t.load(data)
	return t, nil
}

// FromFile builds a table from the file at path. This is the only
// constructor with external I/O.
func FromFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := FromReader(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// load normalizes line endings into the original buffer and records the
// resulting table as a single piece. CRLF and lone CR both become LF;
// all other bytes are copied verbatim.
func (t *Table) load(data []byte) {
	original := make([]byte, 0, len(data))
	var linebreaks []int

	for i := 0; i < len(data); i++ {
		b := data[i]
		if b == '\r' {
			// CRLF: drop the CR, the LF is handled on the next pass.
			if i+1 < len(data) && data[i+1] == '\n' {
				continue
			}
			b = '\n'
		}
		if b == '\n' {
			linebreaks = append(linebreaks, len(original))
		}
		original = append(original, b)
	}

	t.original = original
	t.add = nil
	t.dirty = false
	t.indentWidth, t.indentGuessed = guessIndentWidth(original)
	t.pieces = nil
	if len(original) > 0 {
		t.pieces = []Piece{{
			tag:        tagOriginal,
			start:      0,
			length:     len(original),
			linebreaks: linebreaks,
		}}
	}
}

// Len returns the total number of bytes in the document.
func (t *Table) Len() int {
	n := 0
	for i := range t.pieces {
		n += t.pieces[i].length
	}
	return n
}

// NumLines returns the number of line breaks in the document.
func (t *Table) NumLines() int {
	n := 0
	for i := range t.pieces {
		n += len(t.pieces[i].linebreaks)
	}
	return n
}

// Dirty reports whether the document was mutated since load or save.
func (t *Table) Dirty() bool {
	return t.dirty
}

// IndentWidth returns the indentation width guessed at load time.
func (t *Table) IndentWidth() int {
	return t.indentWidth
}

// SetFallbackIndentWidth replaces the indent width, but only when the
// load-time guess found no evidence in the content. Nonpositive
// widths are ignored.
func (t *Table) SetFallbackIndentWidth(w int) {
	if w > 0 && !t.indentGuessed {
		t.indentWidth = w
	}
}

// buffer returns the backing bytes for a piece.
func (t *Table) buffer(p *Piece) []byte {
	if p.tag == tagOriginal {
		return t.original
	}
	return t.add
}

// ByteAt returns the byte at position, or false past end of text.
func (t *Table) ByteAt(position ByteOffset) (byte, bool) {
	offset := 0
	for i := range t.pieces {
		p := &t.pieces[i]
		if position < offset+p.length {
			return t.buffer(p)[p.start+(position-offset)], true
		}
		offset += p.length
	}
	return 0, false
}

// Bytes returns the full document content as a fresh slice.
func (t *Table) Bytes() []byte {
	out := make([]byte, 0, t.Len())
	for i := range t.pieces {
		p := &t.pieces[i]
		out = append(out, t.buffer(p)[p.start:p.start+p.length]...)
	}
	return out
}

// Insert inserts data at position. The bytes are appended to the add
// buffer and described by a fresh piece; an existing piece containing
// position is split around it. Returns ErrInvalidRange when position is
// outside [0, Len()].
func (t *Table) Insert(position ByteOffset, data []byte) error {
	if position < 0 || position > t.Len() {
		return ErrInvalidRange
	}
	if len(data) == 0 {
		return nil
	}

	piece := Piece{
		tag:        tagAdd,
		start:      len(t.add),
		length:     len(data),
		linebreaks: scanLinebreaks(data),
	}
	t.add = append(t.add, data...)
	t.dirty = true

	if len(t.pieces) == 0 {
		t.pieces = []Piece{piece}
		return nil
	}

	current := 0
	for i := 0; i < len(t.pieces); i++ {
		next := current + t.pieces[i].length

		if position > current && position < next {
			// Split: left remainder keeps linebreaks before the cut,
			// right remainder gets the rest rebased to its new start.
			cut := position - current
			left, right := splitLinebreaks(t.pieces[i].linebreaks, cut)

			rightPiece := Piece{
				tag:        t.pieces[i].tag,
				start:      t.pieces[i].start + cut,
				length:     next - position,
				linebreaks: right,
			}
			t.pieces[i].length = cut
			t.pieces[i].linebreaks = left

			t.pieces = insertPieces(t.pieces, i+1, piece, rightPiece)
			return nil
		}
		if position == current {
			t.pieces = insertPieces(t.pieces, i, piece)
			return nil
		}
		if position == next {
			t.pieces = insertPieces(t.pieces, i+1, piece)
			return nil
		}

		current = next
	}
	return nil
}

// Delete removes the half-open range [start, end). Returns
// ErrInvalidRange when the range is outside the document.
func (t *Table) Delete(start, end ByteOffset) error {
	if start < 0 || end < start || end > t.Len() {
		return ErrInvalidRange
	}
	if start == end {
		return nil
	}
	t.dirty = true

	current := 0
	for i := 0; i < len(t.pieces); i++ {
		p := &t.pieces[i]
		next := current + p.length

		switch {
		case start <= current && end >= next:
			// Fully covered, pruned below.
			p.length = 0

		case start >= current && start < next && end >= next:
			// Tail overlap: truncate at the cut.
			cut := start - current
			left, _ := splitLinebreaks(p.linebreaks, cut)
			p.linebreaks = left
			p.length = cut

		case end >= current && end <= next && start <= current:
			// Head overlap: advance the start past the cut.
			cut := end - current
			_, right := splitLinebreaks(p.linebreaks, cut)
			p.linebreaks = right
			p.start += cut
			p.length -= cut

		case start > current && end < next:
			// Interior: split into left and right remainders with the
			// deleted span excised; nothing later in the document moves
			// relative to other pieces, so iteration can stop here.
			leftLen := start - current
			removed := end - current
			left, rest := splitLinebreaks(p.linebreaks, leftLen)

			var right []int
			for _, lb := range rest {
				// rest is rebased to leftLen; rebase to the right
				// remainder's start instead, dropping deleted breaks.
				abs := lb + leftLen
				if abs >= removed {
					right = append(right, abs-removed)
				}
			}

			rightPiece := Piece{
				tag:        p.tag,
				start:      p.start + removed,
				length:     next - end,
				linebreaks: right,
			}
			p.length = leftLen
			p.linebreaks = left
			t.pieces = insertPieces(t.pieces, i+1, rightPiece)
			t.prune()
			return nil
		}

		current = next
	}

	t.prune()
	return nil
}

// prune removes zero-length pieces.
func (t *Table) prune() {
	kept := t.pieces[:0]
	for _, p := range t.pieces {
		if p.length > 0 {
			kept = append(kept, p)
		}
	}
	t.pieces = kept
}

// Compact merges adjacent pieces that reference contiguous spans of the
// same backing buffer. Observable content is unchanged; this bounds
// piece-list growth under heavy editing.
func (t *Table) Compact() {
	if len(t.pieces) < 2 {
		return
	}
	out := t.pieces[:1]
	for _, p := range t.pieces[1:] {
		last := &out[len(out)-1]
		if p.tag == last.tag && p.start == last.start+last.length {
			for _, lb := range p.linebreaks {
				last.linebreaks = append(last.linebreaks, lb+last.length)
			}
			last.length += p.length
			continue
		}
		out = append(out, p)
	}
	t.pieces = out
}

// SnapshotPieces returns a deep copy of the piece list for undo state.
func (t *Table) SnapshotPieces() []Piece {
	out := make([]Piece, len(t.pieces))
	for i, p := range t.pieces {
		out[i] = p.clone()
	}
	return out
}

// RestorePieces replaces the piece list with a previously captured
// snapshot. The backing buffers are append-only, so every snapshot
// taken from this table remains valid.
func (t *Table) RestorePieces(pieces []Piece) {
	t.pieces = make([]Piece, len(pieces))
	for i, p := range pieces {
		t.pieces[i] = p.clone()
	}
	t.dirty = true
}

// SaveTo writes the document to the file at path and clears the dirty
// flag. Line endings are written as stored; normalization on load is
// one-way.
func (t *Table) SaveTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	for i := range t.pieces {
		p := &t.pieces[i]
		if _, err := f.Write(t.buffer(p)[p.start : p.start+p.length]); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	t.dirty = false
	return nil
}

// scanLinebreaks returns the offsets of '\n' bytes in data.
func scanLinebreaks(data []byte) []int {
	var breaks []int
	for i, b := range data {
		if b == '\n' {
			breaks = append(breaks, i)
		}
	}
	return breaks
}

// splitLinebreaks partitions piece-relative linebreaks at cut: the first
// result keeps offsets < cut unchanged, the second holds offsets >= cut
// rebased by -cut.
func splitLinebreaks(breaks []int, cut int) (left, right []int) {
	for _, lb := range breaks {
		if lb < cut {
			left = append(left, lb)
		} else {
			right = append(right, lb-cut)
		}
	}
	return left, right
}

// insertPieces inserts pieces at index i.
func insertPieces(pieces []Piece, i int, insert ...Piece) []Piece {
	out := make([]Piece, 0, len(pieces)+len(insert))
	out = append(out, pieces[:i]...)
	out = append(out, insert...)
	out = append(out, pieces[i:]...)
	return out
}

const defaultIndentWidth = 4

// guessIndentWidth estimates the indentation step from the distribution
// of leading-whitespace deltas between consecutive lines. Deltas outside
// 2..8 are ignored; with fewer than ten samples for the winner the guess
// falls back to 4 and reports false.
func guessIndentWidth(data []byte) (int, bool) {
	var counts [9]int
	previous := 0
	indent := 0
	counting := true

	flush := func() {
		delta := indent - previous
		if delta < 0 {
			delta = -delta
		}
		if delta >= 2 && delta <= 8 {
			counts[delta]++
		}
		previous = indent
		counting = false
	}

	for _, b := range data {
		if b == '\n' {
			indent = 0
			counting = true
			continue
		}
		if !counting {
			continue
		}
		switch {
		case b == '\t':
			indent += 4
		case textutil.IsSpace(b):
			indent++
		default:
			flush()
		}
	}

	best, bestCount := defaultIndentWidth, 0
	for width, count := range counts {
		if count > bestCount {
			best, bestCount = width, count
		}
	}
	if bestCount > 10 {
		return best, true
	}
	return defaultIndentWidth, false
}
