package open

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/nervous/internal/cache"
	"github.com/Paintersrp/nervous/internal/fzf"
	"github.com/Paintersrp/nervous/internal/prompt"
	"github.com/Paintersrp/nervous/internal/session"
	"github.com/Paintersrp/nervous/internal/state"
	"github.com/Paintersrp/nervous/internal/tui/editor"
)

const previewCacheMB = 8

func NewCmdOpen(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "open [file]",
		Aliases: []string{"o", "edit"},
		Short:   "Open a Markdown document in the editor.",
		Long: heredoc.Doc(`
			Opens a document in the terminal editor. A path that does not exist yet
			starts an empty document that is created on the first save.

			With --find, Markdown files under a directory are listed in a fuzzy
			finder with a rendered preview, and the choice is opened. A file
			argument given alongside --find becomes the initial query.
		`),
		Example: heredoc.Doc(`
			nervous open notes/draft.md
			nervous open --find ~/writing
			nervous open --find . launch
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, s)
		},
	}

	cmd.Flags().StringP("find", "f", "", "Pick a document from this directory with the fuzzy finder (use . for the current one)")
	return cmd
}

// newFinder is replaced in tests.
var newFinder = func(s *state.State) prompt.Finder {
	return fzf.NewFuzzyFinder(s.Handler, "Select a document to open.", s.Config.PreviewStyle)
}

func run(cmd *cobra.Command, args []string, s *state.State) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	if !cmd.Flags().Changed("find") {
		return RunEditor(s, path)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dir, _ := cmd.Flags().GetString("find")
	doc, res := pickDocument(ctx, s, dir, path)
	switch {
	case res.Cancelled():
		fmt.Fprintln(cmd.OutOrStdout(), "No file selected")
		return nil
	case !res.OK():
		return res.Err
	}
	return runEditor(s, doc)
}

// pickDocument opens a document through a terminal session backed by the
// fuzzy finder.
func pickDocument(ctx context.Context, s *state.State, dir, query string) (session.Document, session.Result) {
	term := &prompt.Terminal{
		Handler: s.Handler,
		Finder:  newFinder(s),
		Dir:     dir,
		Query:   query,
	}
	sess := s.NewSession(term)
	res := sess.Open(ctx)
	return sess.Snapshot(), res
}

// RunEditor starts the terminal editor, loading path when given.
func RunEditor(s *state.State, path string) error {
	doc, err := loadDocument(s, path)
	if err != nil {
		return err
	}
	return runEditor(s, doc)
}

func runEditor(s *state.State, doc session.Document) error {
	m, closeFn, err := newEditor(s, doc)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}
	return nil
}

// loadDocument reads path. A missing file yields an empty document that is
// created on the first save.
func loadDocument(s *state.State, path string) (session.Document, error) {
	if path == "" {
		return session.Document{}, nil
	}

	abs := s.Handler.Resolve(path)
	content, err := s.Handler.ReadFile(abs)
	switch {
	case err == nil:
		return session.Document{Path: abs, Content: content}, nil
	case errors.Is(err, fs.ErrNotExist):
		s.Logger.Info("starting new document", slog.String("path", abs))
		return session.Document{Path: abs}, nil
	default:
		return session.Document{}, err
	}
}

// NewEditor builds the editor model around a fresh session. closeFn releases
// the file watcher.
func NewEditor(s *state.State, path string) (*editor.Model, func(), error) {
	doc, err := loadDocument(s, path)
	if err != nil {
		return nil, nil, err
	}
	return newEditor(s, doc)
}

func newEditor(s *state.State, doc session.Document) (*editor.Model, func(), error) {
	bridge := editor.NewBridge(s.Handler)
	sess := s.NewSession(bridge)
	if s.Config.ConfirmDiscard {
		sess.SetDiscardGuard(bridge.DiscardGuard())
	}
	if doc.Path != "" {
		sess.Load(doc.Path, doc.Content)
	}

	previews, err := cache.New(previewCacheMB)
	if err != nil {
		return nil, nil, err
	}
	watcher, err := state.NewDocumentWatcher()
	if err != nil {
		s.Logger.Warn("file watcher unavailable", slog.String("error", err.Error()))
		watcher = nil
	}

	m := editor.New(editor.Options{
		Session:       sess,
		Bridge:        bridge,
		Handler:       s.Handler,
		Watcher:       watcher,
		Cache:         previews,
		DefaultFormat: s.Config.Format(),
		PreviewStyle:  s.Config.PreviewStyle,
		Logger:        s.Logger.With(slog.String("component", "editor")),
	})

	closeFn := func() {
		if watcher != nil {
			_ = watcher.Close()
		}
	}
	return m, closeFn, nil
}
