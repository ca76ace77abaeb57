// Package app wires the editor together: one buffer, its view, the
// highlight cache, the optional language server, and the terminal
// event loop.
package app

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tverras/kiln/internal/config"
	"github.com/tverras/kiln/internal/engine/buffer"
	"github.com/tverras/kiln/internal/highlight"
	"github.com/tverras/kiln/internal/lsp"
	"github.com/tverras/kiln/internal/term"
	"github.com/tverras/kiln/internal/view"
)

// redrawPoll is how often the idle event loop checks whether the
// highlight worker has replaced a chunk.
const redrawPoll = 33 * time.Millisecond

// Editor is one running editor instance: a single buffer and the
// machinery around it.
type Editor struct {
	cfg    *config.Config
	logger *Logger
	buf    *buffer.Buffer
	view   *view.View
	cache  *highlight.Cache

	screen   *term.Screen
	renderer *term.Renderer

	reloads chan *config.Config
}

// New opens path into a fresh editor. The terminal is not touched
// until Run.
func New(path string, cfg *config.Config) (*Editor, error) {
	buf, err := buffer.Open(path)
	if err != nil {
		return nil, fmt.Errorf("app: open %s: %w", path, err)
	}

	e := &Editor{
		cfg: cfg,
		// Every log line names the document it belongs to.
		logger:  FromConfig(cfg.Logging).WithField("buffer", buf.ID),
		buf:     buf,
		view:    view.New(),
		reloads: make(chan *config.Config, 1),
	}
	e.applyConfig(cfg)
	lsp.SetLogFunc(e.logger.WithComponent("lsp").Warn)

	// The interface check must stay on the concrete pointer: a nil
	// *highlight.Cache stored in the Highlighter interface would not
	// compare equal to nil.
	if cache := highlight.New(buf.Language, cfg.Highlight.ChunkLines); cache != nil {
		e.cache = cache
		buf.SetHighlighter(cache)
		cache.Reload(buf.Table)
	}

	e.startServer()
	return e, nil
}

// startServer launches the configured language server for the
// buffer's language. A server that fails to start leaves the editor
// working without completions.
func (e *Editor) startServer() {
	exe := e.cfg.ServerExecutable(e.buf.Language.Identifier, e.buf.Language.ServerExecutable)
	if exe == "" {
		return
	}
	client, err := lsp.Start(exe, e.buf.URI, e.buf.Language.Identifier)
	if err != nil {
		e.logger.WithComponent("lsp").Warn("start %s: %v", exe, err)
		return
	}
	e.buf.SetServer(client)
}

// applyConfig pushes configuration values into the components that
// consume them. Called at startup and on every live reload. The
// highlight chunk size is read once at startup; a reload does not
// re-chunk an open buffer.
func (e *Editor) applyConfig(cfg *config.Config) {
	e.cfg = cfg
	e.view.ScrollLines = cfg.Editor.ScrollLines
	e.buf.Table.SetFallbackIndentWidth(cfg.Editor.TabSize)
	e.logger.SetLevel(ParseLogLevel(cfg.Logging.Level))
}

// ReloadConfig hands a freshly loaded configuration to the event
// loop. Safe to call from the config watcher goroutine; a pending
// reload that has not been picked up yet is simply replaced.
func (e *Editor) ReloadConfig(cfg *config.Config) {
	select {
	case <-e.reloads:
	default:
	}
	e.reloads <- cfg
}

// Run owns the terminal until the user quits with Ctrl-Q.
func (e *Editor) Run() error {
	screen, err := term.New()
	if err != nil {
		return fmt.Errorf("app: terminal: %w", err)
	}
	e.screen = screen
	e.renderer = term.NewRenderer(screen)
	defer e.shutdown()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	// Restore the terminal on SIGINT/SIGTERM instead of dying raw.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	ticker := time.NewTicker(redrawPoll)
	defer ticker.Stop()

	e.draw()
	for {
		select {
		case <-signals:
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := e.handleEvent(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
			e.draw()
		case cfg := <-e.reloads:
			e.applyConfig(cfg)
			e.draw()
		case <-ticker.C:
			if e.cache != nil && e.cache.TakeUpdated() {
				e.draw()
			}
		}
	}
}

// shutdown releases everything Run and New acquired.
func (e *Editor) shutdown() {
	if server := e.buf.Server(); server != nil {
		server.Close()
	}
	if e.cache != nil {
		e.cache.Close()
	}
	if e.screen != nil {
		e.screen.Close()
	}
}

func (e *Editor) handleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return e.handleKey(ev)
	case *tcell.EventMouse:
		buttons := ev.Buttons()
		if buttons&tcell.WheelUp != 0 {
			e.view.HandleScroll(e.buf, -1)
		}
		if buttons&tcell.WheelDown != 0 {
			e.view.HandleScroll(e.buf, 1)
		}
	case *tcell.EventResize:
		e.screen.Sync()
	}
	return nil
}

func (e *Editor) handleKey(ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return ErrQuit
	case tcell.KeyCtrlS:
		if err := e.buf.Save(); err != nil {
			e.logger.Error("save %s: %v", e.buf.Path, err)
		}
		return nil
	}

	ke, ok := term.TranslateKey(ev)
	if !ok {
		return nil
	}
	if ke.IsChar {
		e.buf.HandleChar(ke.Ch)
	} else {
		e.buf.HandleKey(ke.Key)
	}
	return nil
}

func (e *Editor) draw() {
	cols, rows := e.screen.Size()
	if rows > 1 {
		e.view.Adjust(e.buf, rows-1, cols)
	}
	e.renderer.Draw(e.buf, e.view, e.cache)
}
