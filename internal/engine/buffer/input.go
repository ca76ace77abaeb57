package buffer

import "strings"

// Key is a non-printable input key after the terminal layer has
// decoded it.
type Key int

const (
	KeyEscape Key = iota
	KeyBackspace
	KeyEnter
	KeyDelete
	KeyTab
	KeyCtrlSpace
	KeyCtrlJ
	KeyCtrlK
	KeyCtrlR
)

var normalModeCommands = []string{
	"j", "k", "h", "l", "w", "b", "0", "^", "$", "gg", "G", "x", "dd", "D", "J", "K", "v", "V", "u",
}

var visualModeCommands = []string{
	"j", "k", "h", "l", "w", "b", "0", "^", "$", "gg", "G", "x", "d", "v", "V",
}

// HandleKey dispatches a special key according to the current mode.
func (b *Buffer) HandleKey(k Key) {
	switch {
	case b.Mode == ModeNormal && k == KeyEscape:
		b.Cursors = b.Cursors[:1]
	case b.Mode == ModeInsert && k == KeyEscape:
		b.Motion(Motion{Kind: MotionBackward, Count: 1})
		b.SwitchToNormalMode()
	case k == KeyEscape:
		b.SwitchToNormalMode()

	case b.Mode == ModeInsert && k == KeyBackspace:
		b.DeleteCharBack()
	case k == KeyBackspace:
		b.Motion(Motion{Kind: MotionBackward, Count: 1})

	case b.Mode == ModeInsert && k == KeyEnter:
		b.InsertChar('\n')
	case k == KeyEnter:
		b.Motion(Motion{Kind: MotionDown, Count: 1})

	case b.Mode == ModeVisual && k == KeyDelete:
		b.CutSelection()
		b.SwitchToNormalMode()
	case b.Mode == ModeVisualLine && k == KeyDelete:
		b.CutLineSelection()
		b.SwitchToNormalMode()
	case k == KeyDelete:
		b.CutSelection()

	case b.Mode == ModeNormal && k == KeyCtrlR:
		b.Redo()

	case b.Mode == ModeInsert && k == KeyCtrlJ:
		b.CompletionNext()
	case b.Mode == ModeInsert && k == KeyCtrlK:
		b.CompletionPrev()

	case b.Mode == ModeInsert && k == KeyTab:
		if b.HasPendingCompletion() {
			b.Complete()
		} else {
			for i := 0; i < b.Table.IndentWidth(); i++ {
				b.InsertChar(' ')
			}
		}

	case b.Mode == ModeInsert && k == KeyCtrlSpace:
		b.StartCompletion()
	}

	b.mergeCursors()
}

// HandleChar feeds one typed character to the vi command parser. In
// insert mode printable ASCII is inserted directly; elsewhere
// characters accumulate until they form a command or stop being a
// prefix of one.
func (b *Buffer) HandleChar(c byte) {
	if b.Mode == ModeInsert {
		if c >= 0x20 && c <= 0x7E {
			b.InsertChar(c)
		}
		for i := range b.Cursors {
			b.Cursors[i].ResetAnchor()
		}
		b.mergeCursors()
		return
	}

	b.input += string(c)
	if !isPrefixOfCommand(b.input, b.Mode) {
		b.input = string(c)
	}

	if !b.dispatchInput() {
		return
	}

	if b.Mode == ModeNormal {
		for i := range b.Cursors {
			b.Cursors[i].ResetAnchor()
		}
	}
	b.input = ""
	b.mergeCursors()
}

// dispatchInput runs the accumulated command. Returns false while the
// input is still a prefix awaiting more characters.
func (b *Buffer) dispatchInput() bool {
	input := b.input

	switch input {
	case "j":
		b.Motion(Motion{Kind: MotionDown, Count: 1})
	case "k":
		b.Motion(Motion{Kind: MotionUp, Count: 1})
	case "h":
		b.Motion(Motion{Kind: MotionBackward, Count: 1})
	case "l":
		b.Motion(Motion{Kind: MotionForward, Count: 1})
	case "w":
		b.Motion(Motion{Kind: MotionForwardByWord})
	case "b":
		b.Motion(Motion{Kind: MotionBackwardByWord})
	case "0":
		b.Motion(Motion{Kind: MotionToStartOfLine})
	case "$":
		b.Motion(Motion{Kind: MotionToEndOfLine})
	case "^":
		b.Motion(Motion{Kind: MotionToFirstNonBlank})
	case "gg":
		b.Motion(Motion{Kind: MotionToStartOfFile})
	case "G":
		b.Motion(Motion{Kind: MotionToEndOfFile})
	default:
		return b.dispatchCompound(input)
	}
	return true
}

// dispatchCompound handles two-character and mode-specific commands.
func (b *Buffer) dispatchCompound(input string) bool {
	if len(input) == 2 {
		arg := input[1]
		switch input[0] {
		case 'f':
			b.Motion(Motion{Kind: MotionToCharInc, Char: arg})
			return true
		case 'F':
			b.Motion(Motion{Kind: MotionBackToCharInc, Char: arg})
			return true
		case 't':
			b.Motion(Motion{Kind: MotionToCharExc, Char: arg})
			return true
		case 'T':
			b.Motion(Motion{Kind: MotionBackToCharExc, Char: arg})
			return true
		case 'r':
			if b.Mode == ModeNormal {
				b.PushUndoState()
				b.ReplaceChar(arg)
				return true
			}
		}
	}

	switch {
	case input == "x" && b.Mode == ModeVisualLine:
		b.PushUndoState()
		b.CutLineSelection()
	case input == "x":
		b.PushUndoState()
		b.CutSelection()

	case input == "d" && b.Mode == ModeVisual:
		b.PushUndoState()
		b.CutSelection()
		b.SwitchToNormalMode()
	case input == "d" && b.Mode == ModeVisualLine:
		b.PushUndoState()
		b.CutLineSelection()
		b.SwitchToNormalMode()

	case input == "dd" && b.Mode == ModeNormal:
		b.PushUndoState()
		b.SwitchToVisualMode()
		b.CutLineSelection()
		b.SwitchToNormalMode()
	case input == "D" && b.Mode == ModeNormal:
		b.PushUndoState()
		b.SwitchToVisualMode()
		b.Motion(Motion{Kind: MotionToEndOfLine})
		b.CutSelection()
		b.SwitchToNormalMode()

	case input == "J" && b.Mode == ModeNormal:
		b.InsertCursorBelow()
	case input == "K" && b.Mode == ModeNormal:
		b.InsertCursorAbove()

	case input == "i" && b.Mode == ModeNormal:
		b.PushUndoState()
		b.SwitchToInsertMode()
	case input == "I" && b.Mode == ModeNormal:
		b.PushUndoState()
		b.Motion(Motion{Kind: MotionToFirstNonBlank})
		b.SwitchToInsertMode()
	case input == "a" && b.Mode == ModeNormal:
		b.PushUndoState()
		b.SwitchToInsertMode()
		b.Motion(Motion{Kind: MotionForward, Count: 1})
	case input == "A" && b.Mode == ModeNormal:
		b.PushUndoState()
		b.SwitchToInsertMode()
		b.Motion(Motion{Kind: MotionToEndOfLine})
		b.Motion(Motion{Kind: MotionForward, Count: 1})
	case input == "o" && b.Mode == ModeNormal:
		b.PushUndoState()
		b.SwitchToInsertMode()
		b.Motion(Motion{Kind: MotionToEndOfLine})
		b.Motion(Motion{Kind: MotionForward, Count: 1})
		b.InsertChar('\n')
	case input == "O" && b.Mode == ModeNormal:
		b.PushUndoState()
		b.SwitchToInsertMode()
		b.Motion(Motion{Kind: MotionToStartOfLine})
		b.InsertChar('\n')
		b.Motion(Motion{Kind: MotionUp, Count: 1})

	case input == "u" && b.Mode == ModeNormal:
		b.Undo()

	case input == "v" && b.Mode == ModeVisual:
		b.SwitchToNormalMode()
	case input == "v":
		b.SwitchToVisualMode()
	case input == "V" && b.Mode == ModeVisualLine:
		b.SwitchToNormalMode()
	case input == "V":
		b.SwitchToVisualLineMode()

	default:
		return false
	}
	return true
}

// isPrefixOfCommand reports whether input could still grow into a
// command in the given mode.
func isPrefixOfCommand(input string, mode Mode) bool {
	commands := normalModeCommands
	switch mode {
	case ModeVisual, ModeVisualLine:
		commands = visualModeCommands
	case ModeInsert:
		return false
	}

	for _, cmd := range commands {
		if strings.HasPrefix(cmd, input) {
			return true
		}
	}
	if len(input) <= 2 {
		switch input[0] {
		case 'f', 'F', 't', 'T':
			return true
		case 'r':
			return mode == ModeNormal
		}
	}
	return false
}

// SwitchToNormalMode leaves insert/visual mode, keeping cursors off
// newlines and discarding completion state.
func (b *Buffer) SwitchToNormalMode() {
	b.Mode = ModeNormal
	b.input = ""
	for i := range b.Cursors {
		c := &b.Cursors[i]
		if c.AtLineEnd(b.Table) {
			c.MoveBackward(b.Table, 1)
		}
		b.discardCompletion(c)
		c.ResetAnchor()
	}
}

// SwitchToInsertMode enters insert mode.
func (b *Buffer) SwitchToInsertMode() {
	b.Mode = ModeInsert
	for i := range b.Cursors {
		b.Cursors[i].ResetAnchor()
	}
}

// SwitchToVisualMode enters character-wise visual mode.
func (b *Buffer) SwitchToVisualMode() {
	b.Mode = ModeVisual
	b.input = ""
}

// SwitchToVisualLineMode enters line-wise visual mode.
func (b *Buffer) SwitchToVisualLineMode() {
	b.Mode = ModeVisualLine
	b.input = ""
}
