package editor

import (
	"fmt"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Paintersrp/nervous/internal/cache"
	"github.com/Paintersrp/nervous/internal/convert"
	"github.com/Paintersrp/nervous/internal/frontmatter"
	"github.com/Paintersrp/nervous/internal/session"
	"github.com/Paintersrp/nervous/internal/state"
)

type newDoneMsg struct{ res session.Result }

type openDoneMsg struct{ res session.Result }

type saveDoneMsg struct{ res session.Result }

type exportDoneMsg struct {
	res    session.Result
	format convert.Format
}

type copiedMsg struct{ err error }

type previewMsg struct {
	key string
	out string
	err error
}

var writeClipboard = clipboard.WriteAll

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.previewing {
			return m, m.renderPreview()
		}
		return m, nil

	case promptRequestMsg:
		return m, m.showPrompt(msg)

	case newDoneMsg:
		m.busy = ""
		if m.handleResult(msg.res, "New document") {
			m.syncFromSession()
			m.watch("")
		}
		return m, nil

	case openDoneMsg:
		m.busy = ""
		if m.handleResult(msg.res, "Opened "+msg.res.Path) {
			m.syncFromSession()
			m.watch(msg.res.Path)
			if m.previewing {
				return m, m.renderPreview()
			}
		}
		return m, nil

	case saveDoneMsg:
		m.busy = ""
		if m.handleResult(msg.res, "Saved "+msg.res.Path) {
			m.watch(m.session.Snapshot().Path)
		}
		return m, nil

	case exportDoneMsg:
		m.busy = ""
		m.handleResult(msg.res, fmt.Sprintf("Exported %s to %s", msg.format.Label(), msg.res.Path))
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.setError("Copy failed: " + msg.err.Error())
		} else {
			m.setStatus("Copied document body")
		}
		return m, nil

	case previewMsg:
		if msg.err != nil {
			m.setError("Preview failed: " + msg.err.Error())
			return m, nil
		}
		if msg.key == m.previewKey() {
			m.preview = msg.out
		}
		return m, nil

	case state.DocumentChangedMsg:
		m.handleExternalChange(msg)
		return m, m.watcher.Start()

	case state.WatcherErrMsg:
		m.logger.Warn("watcher error", slog.String("error", msg.Err.Error()))
		return m, m.watcher.Start()

	case tea.KeyMsg:
		if m.prompt != nil {
			return m, m.handlePromptKey(msg)
		}
		if m.choosingFormat {
			return m, m.handleFormatKey(msg)
		}
		return m.handleKey(msg)
	}

	return m.updateArea(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.quit) {
		m.quitArmed = false
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		if m.session.Dirty() && !m.quitArmed {
			m.quitArmed = true
			m.setError("Unsaved changes. Press ctrl+q again to quit.")
			return m, nil
		}
		return m, m.quit()

	case key.Matches(msg, m.keys.newDoc):
		if !m.startOp("creating") {
			return m, nil
		}
		return m, func() tea.Msg {
			return newDoneMsg{res: m.session.NewDocument(m.ctx)}
		}

	case key.Matches(msg, m.keys.open):
		if !m.startOp("opening") {
			return m, nil
		}
		return m, func() tea.Msg {
			return openDoneMsg{res: m.session.Open(m.ctx)}
		}

	case key.Matches(msg, m.keys.save), key.Matches(msg, m.keys.saveAs):
		saveAs := key.Matches(msg, m.keys.saveAs)
		if !m.startOp("saving") {
			return m, nil
		}
		return m, func() tea.Msg {
			return saveDoneMsg{res: m.session.Save(m.ctx, saveAs)}
		}

	case key.Matches(msg, m.keys.export):
		if m.busy != "" {
			m.setStatus(fmt.Sprintf("Still %s...", m.busy))
			return m, nil
		}
		m.choosingFormat = true
		m.formatCursor = formatIndex(m.defaultFormat)
		return m, nil

	case key.Matches(msg, m.keys.preview):
		m.previewing = !m.previewing
		if m.previewing {
			m.area.Blur()
			return m, m.renderPreview()
		}
		return m, m.area.Focus()

	case key.Matches(msg, m.keys.copy):
		body := m.session.Body()
		return m, func() tea.Msg {
			return copiedMsg{err: writeClipboard(body)}
		}

	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.previewing {
		if msg.Type == tea.KeyEsc {
			m.previewing = false
			return m, m.area.Focus()
		}
		return m, nil
	}

	return m.updateArea(msg)
}

// updateArea forwards msg to the textarea and reports any body change to the
// session.
func (m *Model) updateArea(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)

	if value := m.area.Value(); value != m.lastBody {
		m.lastBody = value
		m.session.Edit(value)
		m.preview = ""
	}
	return m, cmd
}

func (m *Model) showPrompt(req promptRequestMsg) tea.Cmd {
	m.prompt = &req
	m.area.Blur()
	m.input.Placeholder = ""
	m.input.SetValue(req.initial)
	m.input.CursorEnd()
	if req.kind == promptText {
		return m.input.Focus()
	}
	return nil
}

func (m *Model) closePrompt() tea.Cmd {
	m.prompt = nil
	m.input.Blur()
	m.input.SetValue("")

	cmds := []tea.Cmd{m.bridge.Next()}
	if !m.previewing && !m.choosingFormat {
		cmds = append(cmds, m.area.Focus())
	}
	return tea.Batch(cmds...)
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	req := *m.prompt

	if key.Matches(msg, m.dkeys.cancel) {
		cancelPrompt(req)
		return m.closePrompt()
	}

	if req.kind == promptConfirm {
		switch {
		case key.Matches(msg, m.dkeys.yes):
			answerConfirm(req, true)
			return m.closePrompt()
		case key.Matches(msg, m.dkeys.no):
			answerConfirm(req, false)
			return m.closePrompt()
		}
		return nil
	}

	if key.Matches(msg, m.dkeys.confirm) {
		answerText(req, m.input.Value())
		return m.closePrompt()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleFormatKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.dkeys.cancel):
		m.choosingFormat = false
		m.setStatus("Export cancelled")
		return nil
	case key.Matches(msg, m.dkeys.up):
		m.formatCursor = (m.formatCursor + len(convert.Formats) - 1) % len(convert.Formats)
		return nil
	case key.Matches(msg, m.dkeys.down):
		m.formatCursor = (m.formatCursor + 1) % len(convert.Formats)
		return nil
	case key.Matches(msg, m.dkeys.confirm):
		format := convert.Formats[m.formatCursor]
		m.choosingFormat = false
		if !m.startOp("exporting") {
			return nil
		}
		return func() tea.Msg {
			return exportDoneMsg{res: m.session.Export(m.ctx, format), format: format}
		}
	}

	if r := msg.Runes; len(r) == 1 && r[0] >= '1' && int(r[0]-'1') < len(convert.Formats) {
		m.formatCursor = int(r[0] - '1')
	}
	return nil
}

// handleResult reports res on the status line and returns whether it
// succeeded.
func (m *Model) handleResult(res session.Result, success string) bool {
	switch res.Status {
	case session.StatusSucceeded:
		m.setStatus(success)
		return true
	case session.StatusCancelled:
		m.setStatus("Cancelled")
	default:
		m.setError(res.Message())
	}
	return false
}

func (m *Model) handleExternalChange(msg state.DocumentChangedMsg) {
	if msg.Removed {
		m.setError("File was moved or deleted on disk")
		return
	}

	if m.busy == "saving" {
		return
	}

	content, err := m.handler.ReadFile(msg.Path)
	if err != nil {
		m.logger.Debug("failed to read changed document", slog.String("error", err.Error()))
		return
	}

	doc := m.session.Snapshot()
	if content == doc.Content {
		return
	}
	if doc.Dirty {
		// A save that raced with edits leaves the persisted block in memory.
		disk, current := frontmatter.Split(content), frontmatter.Split(doc.Content)
		if disk.Present && disk.Block == current.Block {
			return
		}
		m.setError("File changed on disk. Unsaved edits kept.")
		return
	}

	m.session.Load(doc.Path, content)
	m.syncFromSession()
	m.setStatus("Reloaded " + doc.Name())
}

func (m *Model) previewKey() string {
	return cache.PreviewKey(m.session.Body(), m.previewWidth())
}

func (m *Model) previewWidth() int {
	return max(m.width-previewStyle.GetHorizontalFrameSize()-appStyle.GetHorizontalFrameSize(), 20)
}
