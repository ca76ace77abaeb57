package buffer

// MotionKind selects a cursor motion.
type MotionKind int

const (
	MotionForward MotionKind = iota
	MotionBackward
	MotionUp
	MotionDown
	MotionForwardByWord
	MotionBackwardByWord
	MotionToStartOfLine
	MotionToEndOfLine
	MotionToStartOfFile
	MotionToEndOfFile
	MotionToFirstNonBlank
	MotionToCharInc
	MotionBackToCharInc
	MotionToCharExc
	MotionBackToCharExc
	MotionExtendSelection
)

// Motion is one cursor motion with its argument: a count for
// directional motions, a target byte for character searches.
type Motion struct {
	Kind  MotionKind
	Count int
	Char  byte
}

// Motion applies m to every cursor. In normal mode cursors are kept
// off newline bytes, and in normal and insert mode the anchor follows
// the position.
func (b *Buffer) Motion(m Motion) {
	count := m.Count
	if count <= 0 {
		count = 1
	}

	for i := range b.Cursors {
		c := &b.Cursors[i]
		switch m.Kind {
		case MotionForward:
			c.MoveForward(b.Table, count)
		case MotionBackward:
			c.MoveBackward(b.Table, count)
		case MotionUp:
			c.MoveUp(b.Table, count)
		case MotionDown:
			c.MoveDown(b.Table, count)
		case MotionForwardByWord:
			c.MoveForwardByWord(b.Table)
		case MotionBackwardByWord:
			c.MoveBackwardByWord(b.Table)
		case MotionToStartOfLine:
			c.MoveToStartOfLine(b.Table)
		case MotionToEndOfLine:
			c.MoveToEndOfLine(b.Table)
		case MotionToStartOfFile:
			c.MoveToStartOfFile()
		case MotionToEndOfFile:
			c.MoveToEndOfFile(b.Table)
		case MotionToFirstNonBlank:
			c.MoveToFirstNonBlankChar(b.Table)
		case MotionToCharInc:
			c.MoveToCharInc(b.Table, m.Char)
		case MotionBackToCharInc:
			c.MoveBackToCharInc(b.Table, m.Char)
		case MotionToCharExc:
			c.MoveToCharExc(b.Table, m.Char)
		case MotionBackToCharExc:
			c.MoveBackToCharExc(b.Table, m.Char)
		case MotionExtendSelection:
			c.ExtendSelection(b.Table)
		}

		// Normal mode does not allow cursors on newlines.
		if b.Mode == ModeNormal && c.AtLineEnd(b.Table) {
			c.MoveBackward(b.Table, 1)
		}

		switch m.Kind {
		case MotionUp, MotionDown:
			c.StickCol(b.Table)
		default:
			c.UnstickCol(b.Table)
		}
	}

	if b.Mode == ModeNormal || b.Mode == ModeInsert {
		for i := range b.Cursors {
			b.Cursors[i].ResetAnchor()
		}
	}
}
