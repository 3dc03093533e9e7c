package open

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Paintersrp/nervous/internal/config"
	"github.com/Paintersrp/nervous/internal/prompt"
	"github.com/Paintersrp/nervous/internal/session"
	"github.com/Paintersrp/nervous/internal/state"
)

func newTestState(t *testing.T) *state.State {
	t.Helper()

	home := t.TempDir()
	cfg := config.Default(home)
	cfg.DefaultDir = t.TempDir()

	s, err := state.NewStateFromConfig(home, cfg)
	if err != nil {
		t.Fatalf("NewStateFromConfig returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewEditorLoadsExistingFile(t *testing.T) {
	s := newTestState(t)
	path := filepath.Join(s.Config.DefaultDir, "doc.md")
	content := "---\ntitle: \"Doc\"\ntags: [alpha]\n---\n\nHello there"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to seed document: %v", err)
	}

	m, closeFn, err := NewEditor(s, "doc.md")
	if err != nil {
		t.Fatalf("NewEditor returned error: %v", err)
	}
	defer closeFn()

	view := m.View()
	if !strings.Contains(view, "doc.md") {
		t.Fatalf("expected file name in title bar, got:\n%s", view)
	}
	if !strings.Contains(view, "tags: alpha") {
		t.Fatalf("expected tags in metadata line, got:\n%s", view)
	}
	if strings.Contains(view, "title: ") {
		t.Fatalf("metadata block must stay out of the editing area, got:\n%s", view)
	}
}

func TestNewEditorStartsMissingFileEmpty(t *testing.T) {
	s := newTestState(t)

	m, closeFn, err := NewEditor(s, "fresh.md")
	if err != nil {
		t.Fatalf("NewEditor returned error: %v", err)
	}
	defer closeFn()

	if !strings.Contains(m.View(), "fresh.md") {
		t.Fatalf("expected the new file name in the title bar")
	}
	if _, err := os.Stat(filepath.Join(s.Config.DefaultDir, "fresh.md")); !os.IsNotExist(err) {
		t.Fatalf("opening must not create the file, stat err = %v", err)
	}
}

func TestNewEditorRejectsDirectory(t *testing.T) {
	s := newTestState(t)
	if err := os.MkdirAll(filepath.Join(s.Config.DefaultDir, "folder"), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	if _, _, err := NewEditor(s, "folder"); err == nil {
		t.Fatalf("expected opening a directory to fail")
	}
}

type stubFinder struct {
	dir, query string
	pick       string
	err        error
}

func (f *stubFinder) Find(dir, query string) (string, error) {
	f.dir, f.query = dir, query
	return f.pick, f.err
}

func withFinder(t *testing.T, f *stubFinder) {
	t.Helper()
	prev := newFinder
	newFinder = func(*state.State) prompt.Finder { return f }
	t.Cleanup(func() { newFinder = prev })
}

func TestPickDocumentOpensFoundFile(t *testing.T) {
	s := newTestState(t)
	path := filepath.Join(s.Config.DefaultDir, "picked.md")
	content := "---\ntitle: \"Picked\"\n---\n\nChosen body"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to seed document: %v", err)
	}

	finder := &stubFinder{pick: path}
	withFinder(t, finder)

	doc, res := pickDocument(context.Background(), s, s.Config.DefaultDir, "pick")
	if !res.OK() {
		t.Fatalf("expected success, got %s: %v", res.Status, res.Err)
	}
	if finder.dir != s.Config.DefaultDir || finder.query != "pick" {
		t.Fatalf("finder called with dir=%q query=%q", finder.dir, finder.query)
	}
	if doc.Path != path || doc.Content != content || doc.Dirty {
		t.Fatalf("unexpected document %+v", doc)
	}

	m, closeFn, err := newEditor(s, doc)
	if err != nil {
		t.Fatalf("newEditor returned error: %v", err)
	}
	defer closeFn()
	if !strings.Contains(m.View(), "picked.md") {
		t.Fatalf("expected the picked file in the title bar")
	}
}

func TestRunFindCancelledPrintsNotice(t *testing.T) {
	s := newTestState(t)
	withFinder(t, &stubFinder{err: session.ErrCancelled})

	cmd := NewCmdOpen(s)
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.Flags().Set("find", s.Config.DefaultDir); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	if err := run(cmd, nil, s); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(out.String(), "No file selected") {
		t.Fatalf("expected cancellation notice, got %q", out.String())
	}
}

func TestRunFindReportsFinderFailure(t *testing.T) {
	s := newTestState(t)
	boom := errors.New("finder broke")
	withFinder(t, &stubFinder{err: boom})

	cmd := NewCmdOpen(s)
	if err := cmd.Flags().Set("find", s.Config.DefaultDir); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	if err := run(cmd, nil, s); !errors.Is(err, boom) {
		t.Fatalf("expected finder error, got %v", err)
	}
}
