package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/tverras/kiln/internal/engine/buffer"
	"github.com/tverras/kiln/internal/highlight"
	"github.com/tverras/kiln/internal/lsp"
	"github.com/tverras/kiln/internal/view"
)

var (
	styleDefault    = tcell.StyleDefault
	styleSelection  = tcell.StyleDefault.Reverse(true)
	styleCursor     = tcell.StyleDefault.Reverse(true).Bold(true)
	styleStatus     = tcell.StyleDefault.Reverse(true)
	stylePopup      = tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorWhite)
	stylePopupSel   = tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	styleDiagnostic = tcell.StyleDefault.Underline(true).Foreground(tcell.ColorRed)
)

// spanStyle maps a highlight kind onto a terminal style. The palette
// follows the editor theme: keywords pink, strings green, numbers
// orange, comments gray.
func spanStyle(k highlight.Kind) tcell.Style {
	switch k {
	case highlight.KindKeyword:
		return tcell.StyleDefault.Foreground(tcell.ColorHotPink)
	case highlight.KindString:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case highlight.KindNumber:
		return tcell.StyleDefault.Foreground(tcell.ColorOrange)
	case highlight.KindComment:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	default:
		return styleDefault
	}
}

// Renderer draws one buffer onto the screen.
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer builds a renderer for the screen.
func NewRenderer(s tcell.Screen) *Renderer {
	return &Renderer{screen: s}
}

// Draw renders the full frame: text with highlight spans, selections,
// cursors, diagnostics, the completion popup, and the status line.
// cache may be nil for unhighlighted buffers.
func (r *Renderer) Draw(b *buffer.Buffer, v *view.View, cache *highlight.Cache) {
	cols, rows := r.screen.Size()
	if rows < 2 || cols < 1 {
		return
	}
	textRows := rows - 1

	r.screen.Clear()
	r.drawText(b, v, cache, textRows, cols)
	r.drawSelections(b, v, textRows, cols)
	r.drawDiagnostics(b, v, textRows, cols)
	r.drawCursors(b, v, textRows, cols)
	r.drawCompletions(b, v, textRows, cols)
	r.drawStatusLine(b, rows-1, cols)
	r.screen.Show()
}

func (r *Renderer) drawText(b *buffer.Buffer, v *view.View, cache *highlight.Cache, rows, cols int) {
	text := v.VisibleText(b, rows)

	styles := make([]tcell.Style, len(text))
	for i := range styles {
		styles[i] = styleDefault
	}
	if cache != nil {
		for _, span := range cache.SpansForLines(b.Table, v.LineOffset, v.LineOffset+rows) {
			st := spanStyle(span.Kind)
			for i := span.Start; i < span.Start+span.Length && i < len(styles); i++ {
				if i >= 0 {
					styles[i] = st
				}
			}
		}
	}

	row, col := 0, 0
	for i, c := range text {
		if c == '\n' {
			row++
			col = 0
			if row >= rows {
				break
			}
			continue
		}
		x := col - v.ColOffset
		col++
		if x < 0 || x >= cols {
			continue
		}
		ch := rune(c)
		if c == '\t' {
			ch = ' '
		}
		r.screen.SetContent(x, row, ch, nil, styles[i])
	}
}

func (r *Renderer) drawSelections(b *buffer.Buffer, v *view.View, rows, cols int) {
	if b.Mode != buffer.ModeVisual && b.Mode != buffer.ModeVisualLine {
		return
	}
	v.VisibleSelections(b, rows, cols, func(row, col, width int) {
		for x := col; x < col+width; x++ {
			r.restyle(x, row, styleSelection)
		}
	})
}

func (r *Renderer) drawDiagnostics(b *buffer.Buffer, v *view.View, rows, cols int) {
	v.VisibleDiagnostics(b, rows, cols, func(d lsp.Diagnostic) {
		startLine := int(d.Range.Start.Line)
		for line := startLine; line <= int(d.Range.End.Line); line++ {
			row := line - v.LineOffset
			if row < 0 || row >= rows {
				continue
			}
			startCol, endCol := 0, cols-1
			if line == startLine {
				startCol = int(d.Range.Start.Character) - v.ColOffset
			}
			if line == int(d.Range.End.Line) {
				endCol = int(d.Range.End.Character) - v.ColOffset
			}
			for x := startCol; x <= endCol && x < cols; x++ {
				if x >= 0 {
					r.restyle(x, row, styleDiagnostic)
				}
			}
		}
	})
}

func (r *Renderer) drawCursors(b *buffer.Buffer, v *view.View, rows, cols int) {
	r.screen.HideCursor()
	last := len(b.Cursors) - 1
	i := 0
	v.VisibleCursors(b, rows, cols, func(row, col int) {
		if i == last {
			r.screen.ShowCursor(col, row)
		} else {
			r.restyle(col, row, styleCursor)
		}
		i++
	})
}

func (r *Renderer) drawCompletions(b *buffer.Buffer, v *view.View, rows, cols int) {
	v.VisibleCompletions(b, rows, cols, func(list *lsp.CompletionList, cv view.CompletionView, selection, viewOffset int) {
		for line := 0; line < cv.Height; line++ {
			index := viewOffset + line
			if index >= len(list.Items) {
				break
			}
			st := stylePopup
			if index == selection {
				st = stylePopupSel
			}
			text := list.Items[index].Text()
			for x := 0; x < cv.Width; x++ {
				ch := ' '
				if x < len(text) {
					ch = rune(text[x])
				}
				if cv.Col+x < cols && cv.Row+line < rows {
					r.screen.SetContent(cv.Col+x, cv.Row+line, ch, nil, st)
				}
			}
		}
	})
}

func (r *Renderer) drawStatusLine(b *buffer.Buffer, row, cols int) {
	dirty := ""
	if b.Table.Dirty() {
		dirty = " [+]"
	}
	line, col := b.Cursors[len(b.Cursors)-1].LineCol(b.Table)
	left := fmt.Sprintf(" %s  %s%s", b.Mode, b.Path, dirty)
	right := fmt.Sprintf("%d:%d ", line+1, col+1)

	for x := 0; x < cols; x++ {
		ch := ' '
		if x < len(left) {
			ch = rune(left[x])
		} else if pad := cols - len(right); x >= pad {
			ch = rune(right[x-pad])
		}
		r.screen.SetContent(x, row, ch, nil, styleStatus)
	}
}

// restyle re-applies a style to a cell, keeping its content.
func (r *Renderer) restyle(x, y int, st tcell.Style) {
	ch, _, _, _ := r.screen.GetContent(x, y)
	if ch == 0 {
		ch = ' '
	}
	r.screen.SetContent(x, y, ch, nil, st)
}
