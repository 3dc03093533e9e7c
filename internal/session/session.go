// Package session holds the open document and mediates every user-triggered
// transition: new, open, edit, save and export.
//
// Operations that reach a collaborator snapshot the document when they are
// invoked and release the lock while waiting, so edits can continue. Results
// are only applied if the document has not been replaced in the meantime, and
// the dirty flag is only cleared if no edit happened after the snapshot.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Paintersrp/nervous/internal/constants"
	"github.com/Paintersrp/nervous/internal/convert"
	"github.com/Paintersrp/nervous/internal/frontmatter"
)

// Collaborator performs the prompts and I/O a session delegates. Prompts
// return ErrCancelled when dismissed.
type Collaborator interface {
	PromptOpen(ctx context.Context) (path string, content string, err error)
	PromptSaveDestination(ctx context.Context, suggested string) (string, error)
	WriteFile(ctx context.Context, path, content string) error
	Convert(ctx context.Context, content string, format convert.Format, output string) error
}

// DiscardGuard is consulted before unsaved changes are dropped by New or Open.
// Returning false keeps the current document.
type DiscardGuard func(ctx context.Context, doc Document) (bool, error)

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithEngine(engine frontmatter.Engine) Option {
	return func(s *Session) {
		s.engine = engine
	}
}

func WithDiscardGuard(guard DiscardGuard) Option {
	return func(s *Session) {
		s.guard = guard
	}
}

type Session struct {
	mu     sync.Mutex
	doc    Document
	gen    uint64 // advanced by every edit
	epoch  uint64 // advanced whenever the document is replaced
	collab Collaborator
	engine frontmatter.Engine
	guard  DiscardGuard
	logger *slog.Logger
}

type snapshot struct {
	doc   Document
	gen   uint64
	epoch uint64
}

func New(collab Collaborator, opts ...Option) *Session {
	s := &Session{
		collab: collab,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetDiscardGuard replaces the guard after construction, for shells that can
// only build their prompt once the session exists.
func (s *Session) SetDiscardGuard(guard DiscardGuard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guard = guard
}

func (s *Session) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

func (s *Session) Body() string {
	return s.Snapshot().Body()
}

func (s *Session) Dirty() bool {
	return s.Snapshot().Dirty
}

func (s *Session) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{doc: s.doc, gen: s.gen, epoch: s.epoch}
}

func (s *Session) replace(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.epoch++
}

// NewDocument discards the current document and starts an empty one.
func (s *Session) NewDocument(ctx context.Context) Result {
	if res, ok := s.confirmDiscard(ctx); !ok {
		return res
	}
	s.replace(Document{})
	s.logger.Debug("new document")
	return Result{Status: StatusSucceeded}
}

// Load adopts content read from path verbatim. The metadata block, if any, is
// kept exactly as loaded.
func (s *Session) Load(path, content string) {
	s.replace(Document{Content: content, Path: path})
	s.logger.Info("document loaded", slog.String("path", path), slog.Int("bytes", len(content)))
}

// Open asks the collaborator for a document and loads it.
func (s *Session) Open(ctx context.Context) Result {
	if res, ok := s.confirmDiscard(ctx); !ok {
		return res
	}

	path, content, err := s.collab.PromptOpen(ctx)
	if err != nil {
		return s.failure("open", "", err)
	}

	s.Load(path, content)
	return Result{Status: StatusSucceeded, Path: path}
}

// Edit replaces the body. The metadata block is carried over untouched.
func (s *Session) Edit(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := frontmatter.Split(s.doc.Content)
	parts.Body = body
	s.doc.Content = parts.String()
	s.doc.Dirty = true
	s.gen++
}

// Save persists the document, prompting for a destination when it has no path
// or forceSaveAs is set.
func (s *Session) Save(ctx context.Context, forceSaveAs bool) Result {
	snap := s.snapshot()
	content := s.engine.ForPersistence(snap.doc.Content, snap.doc.Title())

	path := snap.doc.Path
	if path == "" || forceSaveAs {
		suggested := suggestedName(snap.doc.Path)
		dest, err := s.collab.PromptSaveDestination(ctx, suggested)
		if err != nil {
			return s.failure("save", "", err)
		}
		path = resolveDest(dest, suggested, constants.MarkdownExt)
	}

	if err := s.collab.WriteFile(ctx, path, content); err != nil {
		return s.failure("save", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != snap.epoch {
		s.logger.Info("document replaced while saving", slog.String("path", path))
		return Result{Status: StatusSucceeded, Path: path}
	}

	s.doc.Path = path
	if s.gen == snap.gen {
		s.doc.Content = content
		s.doc.Dirty = false
	} else {
		// Edited while the write was in flight: keep the newer body under the
		// block that was persisted, and stay dirty.
		saved := frontmatter.Split(content)
		saved.Body = frontmatter.Split(s.doc.Content).Body
		s.doc.Content = saved.String()
		s.logger.Info("document edited during save", slog.String("path", path))
	}

	s.logger.Info("document saved", slog.String("path", path), slog.Int("bytes", len(content)))
	return Result{Status: StatusSucceeded, Path: path}
}

// Export converts the document into format and writes it to a destination
// chosen by the collaborator. The session state is never changed.
func (s *Session) Export(ctx context.Context, format convert.Format) Result {
	if !format.Valid() {
		return s.failure("export", "", fmt.Errorf("%w: %q", convert.ErrUnknownFormat, string(format)))
	}

	snap := s.snapshot()
	content := s.engine.ForPersistence(snap.doc.Content, snap.doc.Title())

	suggested := snap.doc.Title() + format.Extension()
	dest, err := s.collab.PromptSaveDestination(ctx, suggested)
	if err != nil {
		return s.failure("export", "", err)
	}
	dest = resolveDest(dest, suggested, format.Extension())

	if err := s.collab.Convert(ctx, content, format, dest); err != nil {
		return s.failure("export", dest, err)
	}

	s.logger.Info("document exported", slog.String("path", dest), slog.String("format", format.String()))
	return Result{Status: StatusSucceeded, Path: dest}
}

func (s *Session) confirmDiscard(ctx context.Context) (Result, bool) {
	s.mu.Lock()
	doc, guard := s.doc, s.guard
	s.mu.Unlock()

	if !doc.Dirty || guard == nil {
		return Result{}, true
	}

	ok, err := guard(ctx, doc)
	if err != nil {
		return s.failure("discard", doc.Path, err), false
	}
	if !ok {
		return Result{Status: StatusCancelled}, false
	}
	return Result{}, true
}

func (s *Session) failure(op, path string, err error) Result {
	if errors.Is(err, ErrCancelled) {
		s.logger.Debug("operation cancelled", slog.String("op", op))
		return Result{Status: StatusCancelled}
	}

	s.logger.Warn("operation failed",
		slog.String("op", op),
		slog.String("path", path),
		slog.String("error", err.Error()),
	)
	return Result{Status: StatusFailed, Path: path, Err: fmt.Errorf("%s failed: %w", op, err)}
}

func suggestedName(path string) string {
	if path == "" {
		return constants.UntitledFile
	}
	return filepath.Base(path)
}

// resolveDest completes a destination that names a directory with the
// suggested file name and adds ext when the result has no extension.
func resolveDest(dest, suggested, ext string) string {
	if strings.HasSuffix(dest, "/") || strings.HasSuffix(dest, string(filepath.Separator)) {
		dest += suggested
	}
	return withDefaultExt(dest, ext)
}

func withDefaultExt(path, ext string) string {
	if filepath.Ext(path) == "" {
		return path + ext
	}
	return path
}
