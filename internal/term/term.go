// Package term owns the tcell screen: lifecycle, input translation,
// and drawing of the buffer, selections, completion popup, and status
// line. Everything above it works in buffer or view coordinates;
// term is the only package that touches terminal cells.
package term

import (
	"github.com/gdamore/tcell/v2"

	"github.com/tverras/kiln/internal/engine/buffer"
)

// Screen wraps the tcell screen with the editor's settings applied.
type Screen struct {
	tcell.Screen
}

// New initialises a terminal screen with mouse and paste support.
func New() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.EnableMouse()
	s.EnablePaste()
	return &Screen{Screen: s}, nil
}

// Close restores the terminal.
func (s *Screen) Close() {
	s.Fini()
}

// KeyEvent is one decoded key press: either a special key or a typed
// character.
type KeyEvent struct {
	Key    buffer.Key
	Ch     byte
	IsChar bool
}

// TranslateKey maps a tcell key event onto the buffer's input model.
// Returns false for keys the editor does not handle.
func TranslateKey(ev *tcell.EventKey) (KeyEvent, bool) {
	switch ev.Key() {
	case tcell.KeyEscape:
		return KeyEvent{Key: buffer.KeyEscape}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return KeyEvent{Key: buffer.KeyBackspace}, true
	case tcell.KeyEnter:
		return KeyEvent{Key: buffer.KeyEnter}, true
	case tcell.KeyDelete:
		return KeyEvent{Key: buffer.KeyDelete}, true
	case tcell.KeyTab:
		return KeyEvent{Key: buffer.KeyTab}, true
	case tcell.KeyCtrlSpace:
		return KeyEvent{Key: buffer.KeyCtrlSpace}, true
	case tcell.KeyCtrlJ:
		return KeyEvent{Key: buffer.KeyCtrlJ}, true
	case tcell.KeyCtrlK:
		return KeyEvent{Key: buffer.KeyCtrlK}, true
	case tcell.KeyCtrlR:
		return KeyEvent{Key: buffer.KeyCtrlR}, true
	case tcell.KeyRune:
		r := ev.Rune()
		if r < 0x20 || r > 0x7E {
			return KeyEvent{}, false
		}
		return KeyEvent{Ch: byte(r), IsChar: true}, true
	default:
		return KeyEvent{}, false
	}
}
