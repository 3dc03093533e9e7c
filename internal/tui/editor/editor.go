// Package editor is the terminal editing surface. It renders the session's
// document and dispatches user commands to it; all state transitions happen in
// the session.
package editor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Paintersrp/nervous/internal/cache"
	"github.com/Paintersrp/nervous/internal/convert"
	"github.com/Paintersrp/nervous/internal/handler"
	"github.com/Paintersrp/nervous/internal/session"
	"github.com/Paintersrp/nervous/internal/state"
)

type Options struct {
	Session       *session.Session
	Bridge        *Bridge
	Handler       *handler.FileHandler
	Watcher       *state.DocumentWatcher
	Cache         *cache.Cache
	DefaultFormat convert.Format
	PreviewStyle  string
	Logger        *slog.Logger
}

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	session *session.Session
	bridge  *Bridge
	handler *handler.FileHandler
	watcher *state.DocumentWatcher
	cache   *cache.Cache
	logger  *slog.Logger

	area  textarea.Model
	input textinput.Model
	help  help.Model
	keys  keyMap
	dkeys dialogKeyMap

	width  int
	height int

	lastBody string

	prompt         *promptRequestMsg
	choosingFormat bool
	formatCursor   int
	defaultFormat  convert.Format

	previewing   bool
	preview      string
	previewStyle string

	busy      string
	status    string
	statusErr bool
	quitArmed bool
}

func New(opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	area := textarea.New()
	area.Placeholder = "Start writing..."
	area.CharLimit = 0
	area.MaxHeight = 0
	area.ShowLineNumbers = false
	area.Focus()

	input := textinput.New()
	input.Prompt = "> "

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	format := opts.DefaultFormat
	if !format.Valid() {
		format = convert.PDF
	}

	m := &Model{
		ctx:           ctx,
		cancel:        cancel,
		session:       opts.Session,
		bridge:        opts.Bridge,
		handler:       opts.Handler,
		watcher:       opts.Watcher,
		cache:         opts.Cache,
		logger:        logger,
		area:          area,
		input:         input,
		help:          help.New(),
		keys:          newKeyMap(),
		dkeys:         newDialogKeyMap(),
		defaultFormat: format,
		previewStyle:  opts.PreviewStyle,
	}
	m.syncFromSession()
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.bridge != nil {
		cmds = append(cmds, m.bridge.Next())
	}
	if m.watcher != nil {
		m.watch(m.session.Snapshot().Path)
		cmds = append(cmds, m.watcher.Start())
	}
	return tea.Batch(cmds...)
}

// syncFromSession replaces the textarea with the session body. Used after the
// document itself changes, never after a save.
func (m *Model) syncFromSession() {
	m.area.SetValue(m.session.Body())
	m.lastBody = m.area.Value()
	m.preview = ""
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) setError(msg string) {
	m.status = msg
	m.statusErr = true
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	m.area.SetWidth(max(width-appStyle.GetHorizontalFrameSize(), 10))
	m.area.SetHeight(max(height-chromeHeight, 3))
	m.input.Width = max(width-10, 10)
	m.help.Width = width
	m.preview = ""
}

// Chrome is the title bar, meta line, status line and help line.
const chromeHeight = 4

func (m *Model) quit() tea.Cmd {
	m.cancel()
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
	return tea.Quit
}

func (m *Model) startOp(label string) bool {
	if m.busy != "" {
		m.setStatus(fmt.Sprintf("Still %s...", m.busy))
		return false
	}
	m.busy = label
	m.setStatus(strings.ToUpper(label[:1]) + label[1:] + "...")
	return true
}

func (m *Model) watch(path string) {
	if m.watcher == nil {
		return
	}
	if m.handler != nil {
		path = m.handler.Resolve(path)
	}
	if err := m.watcher.Watch(path); err != nil {
		m.logger.Warn("failed to watch document", slog.String("path", path), slog.String("error", err.Error()))
	}
}
