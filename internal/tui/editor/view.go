package editor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Paintersrp/nervous/internal/convert"
)

const timeDisplay = "2006-01-02 15:04"

func (m *Model) View() string {
	sections := []string{m.titleView(), m.metaView()}

	switch {
	case m.prompt != nil:
		sections = append(sections, m.promptView())
	case m.choosingFormat:
		sections = append(sections, m.formatView())
	case m.previewing:
		sections = append(sections, previewStyle.Render(m.previewView()))
	default:
		sections = append(sections, m.area.View())
	}

	sections = append(sections, m.statusView(), m.help.View(m.keys))
	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) titleView() string {
	doc := m.session.Snapshot()
	title := doc.Name()
	if doc.Dirty {
		title += dirtyStyle.Render(" *")
	}
	return titleStyle.Render(title)
}

func (m *Model) metaView() string {
	meta, ok := m.session.Snapshot().Meta()
	if !ok {
		return metaStyle.Render("no metadata yet")
	}

	var parts []string
	if len(meta.Tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(meta.Tags, ", "))
	}
	if !meta.Modified.IsZero() {
		parts = append(parts, "modified "+meta.Modified.Local().Format(timeDisplay))
	}
	if len(parts) == 0 {
		return metaStyle.Render(" ")
	}
	return metaStyle.Render(strings.Join(parts, " · "))
}

func (m *Model) statusView() string {
	if m.status == "" {
		return statusStyle.Render(" ")
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

func (m *Model) promptView() string {
	if m.prompt.kind == promptConfirm {
		return dialogStyle.Render(fmt.Sprintf("%s (y/n)", m.prompt.label))
	}
	return dialogStyle.Render(m.prompt.label + "\n" + m.input.View() + "\n" + metaStyle.Render("enter to confirm · esc to cancel"))
}

func (m *Model) formatView() string {
	lines := []string{"Export as"}
	for i, f := range convert.Formats {
		label := fmt.Sprintf("%d. %s", i+1, f.Label())
		if i == m.formatCursor {
			lines = append(lines, selectedItemStyle.Render("> "+label))
		} else {
			lines = append(lines, itemStyle.Render(label))
		}
	}
	return dialogStyle.Render(strings.Join(lines, "\n"))
}

func formatIndex(f convert.Format) int {
	for i, candidate := range convert.Formats {
		if candidate == f {
			return i
		}
	}
	return 0
}

func (m *Model) previewView() string {
	if m.preview == "" {
		return metaStyle.Render("Rendering...")
	}
	return m.preview
}

// renderPreview renders the body with glamour, reusing cached output for the
// same body and width.
func (m *Model) renderPreview() tea.Cmd {
	body := m.session.Body()
	width := m.previewWidth()
	k := m.previewKey()

	if m.cache != nil {
		if out, ok := m.cache.Get(k); ok {
			m.preview = out
			return nil
		}
	}

	style := m.previewStyle
	if style == "" {
		style = "dracula"
	}
	c := m.cache

	return func() tea.Msg {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return previewMsg{key: k, err: err}
		}
		out, err := r.Render(body)
		if err != nil {
			return previewMsg{key: k, err: err}
		}
		if c != nil {
			_ = c.Put(k, out)
		}
		return previewMsg{key: k, out: out}
	}
}
