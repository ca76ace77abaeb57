package piecetable

import (
	"bytes"

	"github.com/tverras/kiln/internal/engine/textutil"
)

// Line describes one document line. Lines are derived on demand from the
// piece linebreak lists and never stored, so they cannot go stale.
// End is exclusive and sits on the newline (or end of text for the last
// line).
type Line struct {
	Index  int
	Start  ByteOffset
	End    ByteOffset
	Length int
}

// LineIndex returns the zero-based index of the line containing position.
// Positions past end of text report the last line.
func (t *Table) LineIndex(position ByteOffset) int {
	offset := 0
	linebreaks := 0
	for i := range t.pieces {
		p := &t.pieces[i]
		if position < offset+p.length {
			rel := position - offset
			for _, lb := range p.linebreaks {
				if lb >= rel {
					break
				}
				linebreaks++
			}
			return linebreaks
		}
		linebreaks += len(p.linebreaks)
		offset += p.length
	}
	return linebreaks
}

// ColIndex returns the column of position: its distance back to the
// previous newline, or to document start on the first line.
func (t *Table) ColIndex(position ByteOffset) int {
	if position == 0 {
		return 0
	}
	count := 0
	for it := t.IterReverseAt(position - 1); it.Next(); {
		if it.Byte() == '\n' {
			return count
		}
		count++
	}
	return position
}

// LineAtIndex materializes line index, or false when the document has no
// such line.
func (t *Table) LineAtIndex(index int) (Line, bool) {
	start := 0
	offset := 0
	i := 0
	for pi := range t.pieces {
		p := &t.pieces[pi]
		for _, lb := range p.linebreaks {
			end := offset + lb
			if i == index {
				return Line{Index: index, Start: start, End: end, Length: end - start}, true
			}
			i++
			start = end + 1
		}
		offset += p.length
	}

	// Trailing line without a newline.
	if index == i && offset > start {
		return Line{Index: index, Start: start, End: offset, Length: offset - start}, true
	}
	return Line{}, false
}

// LineAtPos returns the line containing position.
func (t *Table) LineAtPos(position ByteOffset) (Line, bool) {
	return t.LineAtIndex(t.LineIndex(position))
}

// OffsetFromLineCol converts a line/column address into a byte position,
// clamping the column to the line length. Returns false when the line
// does not exist.
func (t *Table) OffsetFromLineCol(line, col int) (ByteOffset, bool) {
	l, ok := t.LineAtIndex(line)
	if !ok {
		return 0, false
	}
	if col > l.Length {
		col = l.Length
	}
	return l.Start + col, true
}

// LineIndentWidth returns the indentation of the line containing
// position, rounded down to a multiple of the table's indent width.
func (t *Table) LineIndentWidth(position ByteOffset) int {
	line, ok := t.LineAtPos(position)
	if !ok {
		return 0
	}
	count := 0
	it := t.IterAt(line.Start)
	for count < line.Length && it.Next() {
		b := it.Byte()
		if b == '\n' || !textutil.IsSpace(b) {
			break
		}
		count++
	}
	return (count / t.indentWidth) * t.indentWidth
}

// LineText returns the bytes of the line containing position, without
// the trailing newline.
func (t *Table) LineText(position ByteOffset) []byte {
	line, ok := t.LineAtPos(position)
	if !ok {
		return nil
	}
	out := make([]byte, 0, line.Length)
	it := t.IterAt(line.Start)
	for len(out) < line.Length && it.Next() {
		out = append(out, it.Byte())
	}
	return out
}

// LineStartsWith reports whether the trimmed line containing position
// starts with prefix.
func (t *Table) LineStartsWith(position ByteOffset, prefix []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(t.LineText(position)), prefix)
}

// LineEndsWith reports whether the trimmed line containing position ends
// with suffix.
func (t *Table) LineEndsWith(position ByteOffset, suffix []byte) bool {
	return bytes.HasSuffix(bytes.TrimSpace(t.LineText(position)), suffix)
}

// TextBetweenLines returns the bytes spanning startLine through endLine
// inclusive, including the trailing newline when present.
func (t *Table) TextBetweenLines(startLine, endLine int) []byte {
	start, ok := t.OffsetFromLineCol(startLine, 0)
	if !ok {
		return nil
	}
	end, ok := t.OffsetFromLineCol(endLine+1, 0)
	if !ok {
		end = t.Len()
	}
	out := make([]byte, 0, end-start)
	it := t.IterAt(start)
	for len(out) < end-start && it.Next() {
		out = append(out, it.Byte())
	}
	return out
}

// LongestLine returns the length of the longest line in the document.
func (t *Table) LongestLine() int {
	longest := 0
	lineStart := 0
	offset := 0
	for i := range t.pieces {
		p := &t.pieces[i]
		for _, lb := range p.linebreaks {
			end := offset + lb
			if end-lineStart > longest {
				longest = end - lineStart
			}
			lineStart = end + 1
		}
		offset += p.length
	}
	if offset-lineStart > longest {
		longest = offset - lineStart
	}
	return longest
}
