package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Paintersrp/nervous/internal/convert"
	"github.com/Paintersrp/nervous/internal/frontmatter"
)

type fakeCollaborator struct {
	mu sync.Mutex

	openPath    string
	openContent string
	openErr     error

	destination string
	destErr     error
	suggested   []string

	writeErr     error
	writes       map[string]string
	writeGate    chan struct{}
	writeEntered chan struct{}

	convertErr error
	converted  []convertCall
}

type convertCall struct {
	content string
	format  convert.Format
	output  string
}

func newFakeCollaborator() *fakeCollaborator {
	return &fakeCollaborator{writes: make(map[string]string)}
}

func (f *fakeCollaborator) PromptOpen(ctx context.Context) (string, string, error) {
	if f.openErr != nil {
		return "", "", f.openErr
	}
	return f.openPath, f.openContent, nil
}

func (f *fakeCollaborator) PromptSaveDestination(ctx context.Context, suggested string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggested = append(f.suggested, suggested)
	if f.destErr != nil {
		return "", f.destErr
	}
	return f.destination, nil
}

func (f *fakeCollaborator) WriteFile(ctx context.Context, path, content string) error {
	if f.writeEntered != nil {
		f.writeEntered <- struct{}{}
	}
	if f.writeGate != nil {
		<-f.writeGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes[path] = content
	return nil
}

func (f *fakeCollaborator) Convert(ctx context.Context, content string, format convert.Format, output string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.convertErr != nil {
		return f.convertErr
	}
	f.converted = append(f.converted, convertCall{content: content, format: format, output: output})
	return nil
}

func clockAt(ts time.Time) frontmatter.Engine {
	return frontmatter.Engine{Now: func() time.Time { return ts }}
}

func TestNewSessionIsEmpty(t *testing.T) {
	s := New(newFakeCollaborator())
	doc := s.Snapshot()
	if doc.Content != "" || doc.Path != "" || doc.Dirty {
		t.Fatalf("expected empty document, got %+v", doc)
	}
	if doc.Name() != "Untitled" {
		t.Fatalf("unexpected name: %q", doc.Name())
	}
}

func TestSaveNewDocumentPromptsAndGeneratesBlock(t *testing.T) {
	collab := newFakeCollaborator()
	collab.destination = "/tmp/a.md"
	s := New(collab)

	s.Edit("Hello")
	if !s.Dirty() {
		t.Fatalf("expected dirty after edit")
	}

	res := s.Save(context.Background(), false)
	if !res.OK() {
		t.Fatalf("expected save to succeed, got %v: %s", res.Status, res.Message())
	}
	if len(collab.suggested) != 1 || collab.suggested[0] != "untitled.md" {
		t.Fatalf("unexpected suggested names: %v", collab.suggested)
	}

	written, ok := collab.writes["/tmp/a.md"]
	if !ok {
		t.Fatalf("expected file to be written")
	}
	parts := frontmatter.Split(written)
	if !parts.Present {
		t.Fatalf("expected generated block in %q", written)
	}
	if parts.Body != "Hello" {
		t.Fatalf("unexpected persisted body: %q", parts.Body)
	}
	if !strings.HasPrefix(parts.Block, `title: "Untitled"`) {
		t.Fatalf("unexpected title line: %q", parts.Block)
	}

	doc := s.Snapshot()
	if doc.Path != "/tmp/a.md" || doc.Dirty {
		t.Fatalf("unexpected state after save: %+v", doc)
	}
	if doc.Content != written {
		t.Fatalf("expected in-memory content to equal persisted bytes")
	}
}

func TestSaveAppendsMarkdownExtension(t *testing.T) {
	collab := newFakeCollaborator()
	collab.destination = "/tmp/notes"
	s := New(collab)
	s.Edit("x")

	res := s.Save(context.Background(), false)
	if res.Path != "/tmp/notes.md" {
		t.Fatalf("expected .md to be appended, got %q", res.Path)
	}
}

func TestDirectoryDestinationUsesSuggestedName(t *testing.T) {
	collab := newFakeCollaborator()
	collab.destination = "s3://bucket/reports/"
	s := New(collab)
	s.Load("/tmp/q1.md", "Body")

	res := s.Export(context.Background(), convert.PDF)
	if !res.OK() {
		t.Fatalf("export failed: %s", res.Message())
	}
	if res.Path != "s3://bucket/reports/q1.pdf" {
		t.Fatalf("expected suggested name under the prefix, got %q", res.Path)
	}

	collab.destination = "/tmp/docs/"
	s.Edit("new body")
	res = s.Save(context.Background(), true)
	if res.Path != "/tmp/docs/q1.md" {
		t.Fatalf("expected suggested name in the directory, got %q", res.Path)
	}
}

func TestOpenKeepsContentVerbatim(t *testing.T) {
	content := "---\ntitle: \"X\"\ncreated: 2024-01-01T00:00:00.000Z\nmodified: 2024-01-01T00:00:00.000Z\ntags: []\n---\n\nBody"
	collab := newFakeCollaborator()
	collab.openPath = "/tmp/a.md"
	collab.openContent = content
	s := New(collab)

	res := s.Open(context.Background())
	if !res.OK() {
		t.Fatalf("expected open to succeed: %s", res.Message())
	}

	doc := s.Snapshot()
	if doc.Dirty {
		t.Fatalf("expected clean document after open")
	}
	if doc.Content != content {
		t.Fatalf("expected content to be kept verbatim")
	}
	if doc.Body() != "Body" {
		t.Fatalf("unexpected body: %q", doc.Body())
	}
}

func TestEditAfterOpenThenSaveRestampsModified(t *testing.T) {
	t0 := "2024-01-01T00:00:00.000Z"
	content := "---\ntitle: \"X\"\ncreated: " + t0 + "\nmodified: " + t0 + "\ntags: []\n---\n\nBody"

	collab := newFakeCollaborator()
	later := time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)
	s := New(collab, WithEngine(clockAt(later)))
	s.Load("/tmp/a.md", content)

	s.Edit("Body, revised")
	if !s.Dirty() {
		t.Fatalf("expected dirty after edit")
	}
	if !strings.Contains(s.Snapshot().Content, "modified: "+t0) {
		t.Fatalf("edit must not touch the metadata block")
	}

	res := s.Save(context.Background(), false)
	if !res.OK() {
		t.Fatalf("save failed: %s", res.Message())
	}
	if len(collab.suggested) != 0 {
		t.Fatalf("expected no destination prompt for a known path")
	}

	meta, ok, err := frontmatter.MetaOf(collab.writes["/tmp/a.md"])
	if err != nil || !ok {
		t.Fatalf("expected metadata in persisted file, ok=%v err=%v", ok, err)
	}
	orig, _ := time.Parse(time.RFC3339, t0)
	if !meta.Modified.After(orig) {
		t.Fatalf("expected modified after %v, got %v", orig, meta.Modified)
	}
	if !meta.Created.Equal(orig) || meta.Title != "X" {
		t.Fatalf("title or created changed: %+v", meta)
	}
	if s.Snapshot().Body() != "Body, revised" {
		t.Fatalf("unexpected body after save: %q", s.Snapshot().Body())
	}
}

func TestEditAndSaveKeepFileLayout(t *testing.T) {
	later := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	stamp := "2030-01-01T00:00:00.000Z"

	tests := []struct {
		name    string
		content string
		body    string
		want    string
	}{
		{
			name:    "no blank separator",
			content: "---\ntitle: \"X\"\nmodified: T0\n---\nBody",
			body:    "Body!",
			want:    "---\ntitle: \"X\"\nmodified: " + stamp + "\n---\nBody!",
		},
		{
			name:    "crlf",
			content: "---\r\ntitle: x\r\nmodified: T0\r\n---\r\n\r\nBody\r\n",
			body:    "Body\r\nmore\r\n",
			want:    "---\r\ntitle: x\r\nmodified: " + stamp + "\r\n---\r\n\r\nBody\r\nmore\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collab := newFakeCollaborator()
			s := New(collab, WithEngine(clockAt(later)))
			s.Load("/tmp/layout.md", tt.content)

			s.Edit(tt.body)
			if res := s.Save(context.Background(), false); !res.OK() {
				t.Fatalf("save failed: %s", res.Message())
			}

			if got := collab.writes["/tmp/layout.md"]; got != tt.want {
				t.Fatalf("persisted %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSaveAsAlwaysPrompts(t *testing.T) {
	collab := newFakeCollaborator()
	collab.destination = "/tmp/copy.md"
	s := New(collab)
	s.Load("/tmp/a.md", "text")

	res := s.Save(context.Background(), true)
	if !res.OK() {
		t.Fatalf("save as failed: %s", res.Message())
	}
	if len(collab.suggested) != 1 || collab.suggested[0] != "a.md" {
		t.Fatalf("unexpected suggestions: %v", collab.suggested)
	}
	if s.Snapshot().Path != "/tmp/copy.md" {
		t.Fatalf("expected path to move to the new destination")
	}
	meta, _, _ := frontmatter.MetaOf(collab.writes["/tmp/copy.md"])
	if meta.Title != "a" {
		t.Fatalf("expected title derived from the old path, got %q", meta.Title)
	}
}

func TestSaveCancelledLeavesStateUnchanged(t *testing.T) {
	collab := newFakeCollaborator()
	collab.destErr = ErrCancelled
	s := New(collab)
	s.Edit("draft")
	before := s.Snapshot()

	res := s.Save(context.Background(), false)
	if !res.Cancelled() {
		t.Fatalf("expected cancelled result, got %v", res.Status)
	}
	if res.Err != nil {
		t.Fatalf("cancellation must not carry an error, got %v", res.Err)
	}
	if s.Snapshot() != before {
		t.Fatalf("state changed after cancel: %+v", s.Snapshot())
	}
	if len(collab.writes) != 0 {
		t.Fatalf("expected no writes after cancel")
	}
}

func TestSaveFailureLeavesStateUnchanged(t *testing.T) {
	collab := newFakeCollaborator()
	collab.destination = "/tmp/b.md"
	collab.writeErr = errors.New("permission denied")
	s := New(collab)
	s.Edit("draft")
	before := s.Snapshot()

	res := s.Save(context.Background(), false)
	if res.Status != StatusFailed {
		t.Fatalf("expected failure, got %v", res.Status)
	}
	if !strings.Contains(res.Message(), "permission denied") {
		t.Fatalf("expected reason in message, got %q", res.Message())
	}
	if s.Snapshot() != before {
		t.Fatalf("failed save must not adopt a path or clear dirty: %+v", s.Snapshot())
	}
}

func TestEditDuringSaveKeepsDocumentDirty(t *testing.T) {
	collab := newFakeCollaborator()
	collab.destination = "/tmp/race.md"
	collab.writeGate = make(chan struct{})
	collab.writeEntered = make(chan struct{}, 1)
	s := New(collab)
	s.Edit("first")

	done := make(chan Result, 1)
	go func() {
		done <- s.Save(context.Background(), false)
	}()

	select {
	case <-collab.writeEntered:
	case <-time.After(2 * time.Second):
		t.Fatalf("save never reached the write")
	}

	s.Edit("second")
	close(collab.writeGate)

	var res Result
	select {
	case res = <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("save did not complete")
	}

	if !res.OK() {
		t.Fatalf("save failed: %s", res.Message())
	}

	if frontmatter.Split(collab.writes["/tmp/race.md"]).Body != "first" {
		t.Fatalf("expected content snapshotted at invocation to be persisted")
	}

	doc := s.Snapshot()
	if !doc.Dirty {
		t.Fatalf("expected document to stay dirty after an edit during save")
	}
	if doc.Body() != "second" {
		t.Fatalf("expected newer edit to survive, got %q", doc.Body())
	}
	if doc.Path != "/tmp/race.md" {
		t.Fatalf("expected path to be adopted, got %q", doc.Path)
	}
	if !frontmatter.Split(doc.Content).Present {
		t.Fatalf("expected persisted block to be carried into the session")
	}
}

func TestNewDocumentDuringSaveIsNotOverwritten(t *testing.T) {
	collab := newFakeCollaborator()
	collab.destination = "/tmp/old.md"
	collab.writeGate = make(chan struct{})
	collab.writeEntered = make(chan struct{}, 1)
	s := New(collab)
	s.Edit("old")

	done := make(chan Result, 1)
	go func() {
		done <- s.Save(context.Background(), false)
	}()
	<-collab.writeEntered

	if res := s.NewDocument(context.Background()); !res.OK() {
		t.Fatalf("new document failed: %s", res.Message())
	}
	close(collab.writeGate)
	<-done

	doc := s.Snapshot()
	if doc.Path != "" || doc.Content != "" || doc.Dirty {
		t.Fatalf("expected replaced document to stay empty, got %+v", doc)
	}
}

func TestExportFailureLeavesStateUnchanged(t *testing.T) {
	collab := newFakeCollaborator()
	collab.destination = "/tmp/out.pdf"
	collab.convertErr = errors.Join(convert.ErrConverterNotFound, errors.New("pandoc not found in PATH"))
	s := New(collab)
	s.Load("/tmp/a.md", "Body")
	s.Edit("Body edited")
	before := s.Snapshot()

	res := s.Export(context.Background(), convert.PDF)
	if res.Status != StatusFailed {
		t.Fatalf("expected failure, got %v", res.Status)
	}
	if !errors.Is(res.Err, convert.ErrConverterNotFound) {
		t.Fatalf("expected converter error, got %v", res.Err)
	}
	if res.Message() == "" {
		t.Fatalf("expected a readable reason")
	}
	if s.Snapshot() != before {
		t.Fatalf("export must not change state")
	}
}

func TestExportSuccessDoesNotTouchState(t *testing.T) {
	collab := newFakeCollaborator()
	collab.destination = "/tmp/out"
	s := New(collab)
	s.Load("/tmp/brief.md", "Body")
	before := s.Snapshot()

	res := s.Export(context.Background(), convert.DOCX)
	if !res.OK() {
		t.Fatalf("export failed: %s", res.Message())
	}
	if res.Path != "/tmp/out.docx" {
		t.Fatalf("expected format extension appended, got %q", res.Path)
	}
	if collab.suggested[0] != "brief.docx" {
		t.Fatalf("unexpected suggestion: %q", collab.suggested[0])
	}
	if len(collab.converted) != 1 || !frontmatter.Split(collab.converted[0].content).Present {
		t.Fatalf("expected converter to receive content with a metadata block")
	}
	if s.Snapshot() != before {
		t.Fatalf("export must not change state")
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	collab := newFakeCollaborator()
	s := New(collab)

	res := s.Export(context.Background(), convert.Format("rtf"))
	if res.Status != StatusFailed || !errors.Is(res.Err, convert.ErrUnknownFormat) {
		t.Fatalf("expected unknown format failure, got %v %v", res.Status, res.Err)
	}
	if len(collab.suggested) != 0 {
		t.Fatalf("expected no prompt for an unknown format")
	}
}

func TestDiscardGuardRefusalKeepsDocument(t *testing.T) {
	collab := newFakeCollaborator()
	calls := 0
	s := New(collab, WithDiscardGuard(func(ctx context.Context, doc Document) (bool, error) {
		calls++
		return false, nil
	}))
	s.Edit("unsaved")

	if res := s.NewDocument(context.Background()); !res.Cancelled() {
		t.Fatalf("expected cancelled, got %v", res.Status)
	}
	if res := s.Open(context.Background()); !res.Cancelled() {
		t.Fatalf("expected cancelled open, got %v", res.Status)
	}
	if calls != 2 {
		t.Fatalf("expected guard to be consulted twice, got %d", calls)
	}
	if s.Body() != "unsaved" {
		t.Fatalf("expected document to be kept")
	}
}

func TestDiscardGuardSkippedWhenClean(t *testing.T) {
	s := New(newFakeCollaborator(), WithDiscardGuard(func(ctx context.Context, doc Document) (bool, error) {
		t.Fatalf("guard must not be consulted for a clean document")
		return false, nil
	}))
	s.Load("/tmp/a.md", "clean")

	if res := s.NewDocument(context.Background()); !res.OK() {
		t.Fatalf("expected new document, got %v", res.Status)
	}
}

func TestOpenCancelledIsNoop(t *testing.T) {
	collab := newFakeCollaborator()
	collab.openErr = ErrCancelled
	s := New(collab)
	s.Load("/tmp/a.md", "kept")

	res := s.Open(context.Background())
	if !res.Cancelled() {
		t.Fatalf("expected cancelled, got %v", res.Status)
	}
	if s.Snapshot().Path != "/tmp/a.md" {
		t.Fatalf("expected current document to be kept")
	}
}
