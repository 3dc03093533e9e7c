package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	gosync "sync"

	"github.com/spf13/viper"

	"github.com/Paintersrp/nervous/internal/config"
	"github.com/Paintersrp/nervous/internal/constants"
	"github.com/Paintersrp/nervous/internal/convert"
	"github.com/Paintersrp/nervous/internal/frontmatter"
	"github.com/Paintersrp/nervous/internal/handler"
	"github.com/Paintersrp/nervous/internal/session"
	"github.com/Paintersrp/nervous/internal/sync"
)

type State struct {
	Config    *config.Config
	Home      string
	Logger    *slog.Logger
	Handler   *handler.FileHandler
	Converter *convert.Converter
	Engine    frontmatter.Engine

	level     *slog.LevelVar
	logCloser io.Closer

	publisherOnce gosync.Once
	publisher     *sync.Publisher
	publisherErr  error
}

func NewState() (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(home)
	if err != nil {
		return nil, err
	}

	return NewStateFromConfig(home, cfg)
}

// NewStateFromConfig builds the shared services around an already loaded
// config.
func NewStateFromConfig(home string, cfg *config.Config) (*State, error) {
	s := &State{
		Config:  cfg,
		Home:    home,
		Handler: handler.NewFileHandler(cfg.DefaultDir),
		level:   new(slog.LevelVar),
	}

	if err := s.openLog(); err != nil {
		return nil, err
	}
	s.configure()

	return s, nil
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

func LoadConfig(home string) (*config.Config, error) {
	config.BindEnv(viper.GetViper())

	if err := config.EnsureConfigExists(home); err != nil {
		return nil, err
	}

	return config.Load(home)
}

// Reconfigure applies flag and environment overrides from v and rebuilds the
// services that depend on them.
func (s *State) Reconfigure(v *viper.Viper) error {
	if err := s.Config.ApplyOverrides(v); err != nil {
		return err
	}
	if err := s.Config.Validate(); err != nil {
		return err
	}
	s.Handler = handler.NewFileHandler(s.Config.DefaultDir)
	s.configure()
	return nil
}

func (s *State) configure() {
	s.level.Set(parseLevel(s.Config.LogLevel))
	s.Converter = convert.New(
		s.Config.Converter,
		convert.WithLogger(s.Logger.With(slog.String("component", "convert"))),
	)
}

func (s *State) openLog() error {
	var w io.Writer = io.Discard
	if path := s.Config.LogFile; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		s.logCloser = file
		w = file
	}

	s.Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: s.level})).
		With(slog.String("app", constants.AppName))
	return nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Publisher returns the S3 publisher, building it on first use.
func (s *State) Publisher(ctx context.Context) (*sync.Publisher, error) {
	s.publisherOnce.Do(func() {
		s.publisher, s.publisherErr = sync.NewPublisher(
			ctx,
			s.Config.S3,
			s.Logger.With(slog.String("component", "sync")),
		)
	})
	return s.publisher, s.publisherErr
}

// SetPublisher installs p in place of the lazily built S3 publisher.
func (s *State) SetPublisher(p *sync.Publisher) {
	s.publisherOnce.Do(func() {})
	s.publisher, s.publisherErr = p, nil
}

// NewSession builds the single document session for this run.
func (s *State) NewSession(prompter Prompter, opts ...session.Option) *session.Session {
	base := []session.Option{
		session.WithLogger(s.Logger.With(slog.String("component", "session"))),
		session.WithEngine(s.Engine),
	}
	return session.New(s.Collaborator(prompter), append(base, opts...)...)
}

// Close releases the log file.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.logCloser != nil {
		if err := s.logCloser.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
		s.logCloser = nil
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
