// Package view maps buffer coordinates onto a terminal viewport: it
// tracks line/column scroll offsets, follows the last cursor, and
// computes the geometry of the completion popup. The view knows
// nothing about drawing; the renderer asks it what is visible and
// where.
package view

import (
	"github.com/tverras/kiln/internal/engine/buffer"
	"github.com/tverras/kiln/internal/engine/piecetable"
	"github.com/tverras/kiln/internal/lsp"
)

const scrollLinesPerRoll = 3

const maxShownCompletionItems = 10

// CompletionView is the placement of one completion popup in view
// coordinates.
type CompletionView struct {
	Row    int
	Col    int
	Width  int
	Height int
}

// View is the scroll state of one buffer.
type View struct {
	LineOffset int
	ColOffset  int

	// ScrollLines is the vertical step per wheel roll.
	ScrollLines int
}

// New returns a view scrolled to the top left.
func New() *View {
	return &View{ScrollLines: scrollLinesPerRoll}
}

// HandleScroll scrolls by one wheel roll; sign is +1 to scroll the
// text up (view moves down) and -1 for the opposite.
func (v *View) HandleScroll(b *buffer.Buffer, sign int) {
	v.scrollVertical(b, sign*v.ScrollLines)
}

func (v *View) scrollVertical(b *buffer.Buffer, delta int) {
	limit := b.Table.NumLines() - 1
	if limit < 0 {
		limit = 0
	}
	v.LineOffset += delta
	if v.LineOffset > limit {
		v.LineOffset = limit
	}
	if v.LineOffset < 0 {
		v.LineOffset = 0
	}
}

// VisibleText returns the bytes of the rows currently on screen.
func (v *View) VisibleText(b *buffer.Buffer, rows int) []byte {
	return b.Table.TextBetweenLines(v.LineOffset, v.LineOffset+rows-1)
}

// LineColAt converts a screen cell to an absolute line/column, used
// for mouse clicks.
func (v *View) LineColAt(row, col int) (int, int) {
	return row + v.LineOffset, col + v.ColOffset
}

// VisibleSelections calls f with the view row, view column, and width
// of every visible selection segment. In visual-line mode whole lines
// between each cursor's position and anchor are reported; otherwise
// each cursor's per-line selection ranges are clipped to the
// viewport.
func (v *View) VisibleSelections(b *buffer.Buffer, rows, cols int, f func(row, col, width int)) {
	if b.Mode == buffer.ModeVisualLine {
		for i := range b.Cursors {
			c := &b.Cursors[i]
			first := b.Table.LineIndex(c.SelectionStart())
			last := b.Table.LineIndex(c.SelectionEnd())
			for line := first; line <= last; line++ {
				l, ok := b.Table.LineAtIndex(line)
				if !ok {
					break
				}
				v.emitSpan(line, 0, l.Length, rows, cols, f)
			}
		}
		return
	}

	for i := range b.Cursors {
		c := &b.Cursors[i]
		if !c.HasSelection() && b.Mode != buffer.ModeVisual {
			continue
		}
		for _, r := range c.SelectionRanges(b.Table) {
			v.emitSpan(r.Line, r.StartCol, r.EndCol, rows, cols, f)
		}
	}
}

// emitSpan clips the inclusive column span [startCol, endCol] on line
// to the viewport and reports it in view coordinates.
func (v *View) emitSpan(line, startCol, endCol, rows, cols int, f func(row, col, width int)) {
	if line < v.LineOffset || line >= v.LineOffset+rows {
		return
	}
	if startCol < v.ColOffset {
		startCol = v.ColOffset
	}
	if last := v.ColOffset + cols - 1; endCol > last {
		endCol = last
	}
	if startCol > endCol {
		return
	}
	f(line-v.LineOffset, startCol-v.ColOffset, endCol-startCol+1)
}

// VisibleCursors calls f with the view row and column of every cursor
// inside the viewport.
func (v *View) VisibleCursors(b *buffer.Buffer, rows, cols int, f func(row, col int)) {
	for i := range b.Cursors {
		line, col := b.Cursors[i].LineCol(b.Table)
		if v.posInRenderRange(line, col, rows, cols) {
			f(line-v.LineOffset, col-v.ColOffset)
		}
	}
}

// VisibleCompletions calls f for every cursor with an answered,
// non-empty completion request whose popup fits on screen.
func (v *View) VisibleCompletions(b *buffer.Buffer, rows, cols int, f func(list *lsp.CompletionList, cv CompletionView, selection, viewOffset int)) {
	server := b.Server()
	if server == nil {
		return
	}
	for i := range b.Cursors {
		req := b.Cursors[i].Request
		if req == nil {
			continue
		}
		list, ok := server.Completion(req.ID)
		if !ok || len(list.Items) == 0 {
			continue
		}
		cv, ok := v.completionViewAt(b.Table, list, req.Position, rows, cols)
		if !ok {
			continue
		}
		f(list, cv, req.SelectionIndex, req.SelectionViewOffset)
	}
}

// VisibleDiagnostics calls f for every error or warning whose range
// touches the viewport. Positions are absolute line/column addresses.
func (v *View) VisibleDiagnostics(b *buffer.Buffer, rows, cols int, f func(d lsp.Diagnostic)) {
	server := b.Server()
	if server == nil {
		return
	}
	for _, d := range server.Diagnostics() {
		if d.Severity > lsp.SeverityWarning {
			continue
		}
		startVisible := v.posInRenderRange(int(d.Range.Start.Line), int(d.Range.Start.Character), rows, cols)
		endVisible := v.posInRenderRange(int(d.Range.End.Line), int(d.Range.End.Character), rows, cols)
		if startVisible || endVisible {
			f(d)
		}
	}
}

// Adjust scrolls so the last cursor stays within the viewport, with a
// one-cell margin on the bottom and right edges.
func (v *View) Adjust(b *buffer.Buffer, rows, cols int) {
	if len(b.Cursors) == 0 {
		return
	}
	line, col := b.Cursors[len(b.Cursors)-1].LineCol(b.Table)
	if v.posInEditRange(line, col, rows, cols) {
		return
	}

	if line < v.LineOffset {
		v.LineOffset = line
	} else if line > v.LineOffset+rows-2 {
		v.LineOffset = line - (rows - 2)
	}

	if col < v.ColOffset {
		v.ColOffset = col
	} else if col > v.ColOffset+cols-2 {
		v.ColOffset = col - (cols - 2)
	}
}

// completionViewAt places the completion popup next to the request
// position: below the line when enough rows remain, otherwise growing
// upward, and shifted left when the widest item would spill past the
// right edge.
func (v *View) completionViewAt(t *piecetable.Table, list *lsp.CompletionList, position piecetable.ByteOffset, rows, cols int) (CompletionView, bool) {
	line := t.LineIndex(position)
	col := t.ColIndex(position)
	if !v.posInRenderRange(line, col, rows, cols) {
		return CompletionView{}, false
	}

	longest := 0
	for i := range list.Items {
		if n := len(list.Items[i].Text()); n > longest {
			longest = n
		}
	}
	width := longest + 1

	height := len(list.Items)
	if height > maxShownCompletionItems {
		height = maxShownCompletionItems
	}

	row := line - v.LineOffset
	viewCol := col - v.ColOffset

	above := row - 1
	if above < 0 {
		above = 0
	}
	below := rows - (row + 2)
	if below < 0 {
		below = 0
	}

	if below < 5 && above > below {
		if height > above {
			height = above
		}
		row -= height
		if row < 0 {
			row = 0
		}
	} else {
		if height > below {
			height = below
		}
		row++
	}

	right := cols - (viewCol + 1)
	if right < 0 {
		right = 0
	}
	if right < width {
		viewCol -= width
		if viewCol < 0 {
			viewCol = 0
		}
	}

	return CompletionView{Row: row, Col: viewCol, Width: width, Height: height}, true
}

func (v *View) posInEditRange(line, col, rows, cols int) bool {
	return line >= v.LineOffset && line < v.LineOffset+rows-1 &&
		col >= v.ColOffset && col < v.ColOffset+cols-1
}

func (v *View) posInRenderRange(line, col, rows, cols int) bool {
	return line >= v.LineOffset && line < v.LineOffset+rows &&
		col >= v.ColOffset && col < v.ColOffset+cols
}
