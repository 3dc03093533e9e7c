package editor

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	newDoc  key.Binding
	open    key.Binding
	save    key.Binding
	saveAs  key.Binding
	export  key.Binding
	preview key.Binding
	copy    key.Binding
	help    key.Binding
	quit    key.Binding
}

type dialogKeyMap struct {
	up      key.Binding
	down    key.Binding
	confirm key.Binding
	cancel  key.Binding
	yes     key.Binding
	no      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		newDoc: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new"),
		),
		open: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "open"),
		),
		save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		saveAs: key.NewBinding(
			key.WithKeys("alt+s"),
			key.WithHelp("alt+s", "save as"),
		),
		export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export"),
		),
		preview: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "preview"),
		),
		copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy"),
		),
		help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "help"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("ctrl+q", "quit"),
		),
	}
}

func newDialogKeyMap() dialogKeyMap {
	return dialogKeyMap{
		up: key.NewBinding(
			key.WithKeys("up", "left", "shift+tab"),
			key.WithHelp("↑", "previous"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "right", "tab"),
			key.WithHelp("↓", "next"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "confirm"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		no: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", "no"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.save, k.export, k.preview, k.help, k.quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.newDoc, k.open, k.save, k.saveAs},
		{k.export, k.preview, k.copy},
		{k.help, k.quit},
	}
}
