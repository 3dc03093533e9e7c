package state

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Paintersrp/nervous/internal/convert"
	"github.com/Paintersrp/nervous/internal/session"
	"github.com/Paintersrp/nervous/internal/sync"
)

// Prompter is the interactive half of a session collaborator. The TUI and the
// terminal prompts each provide one.
type Prompter interface {
	PromptOpen(ctx context.Context) (path string, content string, err error)
	PromptSaveDestination(ctx context.Context, suggested string) (string, error)
}

// Storage is the I/O half: atomic file writes and conversion, with exports to
// s3:// destinations published after a local conversion.
type Storage struct {
	state *State
}

func (s *State) Storage() *Storage {
	return &Storage{state: s}
}

type collaborator struct {
	Prompter
	*Storage
}

// Collaborator pairs prompter with the state's storage.
func (s *State) Collaborator(prompter Prompter) session.Collaborator {
	return collaborator{Prompter: prompter, Storage: s.Storage()}
}

func (st *Storage) WriteFile(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return st.state.Handler.WriteFile(path, content)
}

func (st *Storage) Convert(ctx context.Context, content string, format convert.Format, output string) error {
	if !sync.IsRemote(output) {
		return st.state.Converter.Convert(ctx, content, format, st.state.Handler.Resolve(output))
	}

	loc, err := sync.ParseLocation(output, "")
	if err != nil {
		return err
	}

	publisher, err := st.state.Publisher(ctx)
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "nervous-publish-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(dir)

	local := filepath.Join(dir, filepath.Base(loc.Key))
	if err := st.state.Converter.Convert(ctx, content, format, local); err != nil {
		return err
	}

	st.state.Logger.Debug("publishing export", slog.String("location", loc.String()))
	return publisher.Publish(ctx, local, loc, format.MIMEType())
}
