package cursor

import "github.com/tverras/kiln/internal/engine/piecetable"

// SelectionRange is one rendered row of a selection: a line index and
// an inclusive column span on that line. Computed on demand, never
// stored.
type SelectionRange struct {
	Line     int
	StartCol int
	EndCol   int
}

// ExtendSelection grows the selection to whole-line bounds: the
// anchor snaps to the start of its line and the position to the end
// of its line, keeping the selection's direction.
func (c *Cursor) ExtendSelection(t *piecetable.Table) {
	startLine, ok := t.LineAtPos(c.SelectionStart())
	if !ok {
		return
	}
	endLine, ok := t.LineAtPos(c.SelectionEnd())
	if !ok {
		return
	}
	if c.MovingForward() {
		c.Anchor = startLine.Start
		c.Position = endLine.End
	} else {
		c.Anchor = endLine.End
		c.Position = startLine.Start
	}
}

// SelectLine sets anchor and position to the bounds of the line
// containing the cursor.
func (c *Cursor) SelectLine(t *piecetable.Table) {
	line, ok := t.LineAtPos(c.Position)
	if !ok {
		return
	}
	c.Anchor = line.Start
	c.Position = line.End
}

// SelectionRanges materializes the selection as per-line column
// spans: the first line runs from the earlier column to the line end,
// fully covered lines span the whole line, and the last line runs
// from column 0 to the later column. A selection within one line
// yields a single range.
func (c *Cursor) SelectionRanges(t *piecetable.Table) []SelectionRange {
	first := c.SelectionStart()
	last := c.SelectionEnd()

	firstLine := t.LineIndex(first)
	lastLine := t.LineIndex(last)
	firstCol := t.ColIndex(first)
	lastCol := t.ColIndex(last)

	if firstLine == lastLine {
		return []SelectionRange{{Line: firstLine, StartCol: firstCol, EndCol: lastCol}}
	}

	ranges := make([]SelectionRange, 0, lastLine-firstLine+1)
	if line, ok := t.LineAtIndex(firstLine); ok {
		ranges = append(ranges, SelectionRange{Line: firstLine, StartCol: firstCol, EndCol: line.Length})
	}
	for i := firstLine + 1; i < lastLine; i++ {
		line, ok := t.LineAtIndex(i)
		if !ok {
			break
		}
		ranges = append(ranges, SelectionRange{Line: i, StartCol: 0, EndCol: line.Length})
	}
	ranges = append(ranges, SelectionRange{Line: lastLine, StartCol: 0, EndCol: lastCol})
	return ranges
}
