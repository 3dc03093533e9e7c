// Package convert runs the external document converter used for exports.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/Paintersrp/nervous/internal/constants"
)

// ErrConverterNotFound is returned when the converter binary is not on PATH.
var ErrConverterNotFound = errors.New("converter not found")

// CommandTemplate describes the converter invocation. Exec and Args may use the
// {input}, {output} and {format} placeholders.
type CommandTemplate struct {
	Exec string   `yaml:"exec" json:"exec"`
	Args []string `yaml:"args" json:"args"`
}

// String renders the template as a shell-style command line.
func (t CommandTemplate) String() string {
	parts := append([]string{t.Exec}, t.Args...)
	for i, part := range parts {
		if strings.ContainsAny(part, " \t\"'") {
			parts[i] = strconv.Quote(part)
		}
	}
	return strings.Join(parts, " ")
}

// DefaultCommand converts Markdown with pandoc.
var DefaultCommand = CommandTemplate{
	Exec: "pandoc",
	Args: []string{"{input}", "-o", "{output}", "--from=markdown", "--standalone"},
}

type commandContext struct {
	Input  string
	Output string
	Format Format
}

type Converter struct {
	template CommandTemplate
	tempDir  string
	logger   *slog.Logger
}

type Option func(*Converter)

func WithTempDir(dir string) Option {
	return func(c *Converter) {
		c.tempDir = dir
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a converter from a command template. An empty template falls
// back to DefaultCommand.
func New(template CommandTemplate, opts ...Option) *Converter {
	if strings.TrimSpace(template.Exec) == "" {
		template = DefaultCommand
	}
	c := &Converter{
		template: template,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseCommandLine turns a shell-style command line such as
// `pandoc {input} -o {output}` into a template.
func ParseCommandLine(line string) (CommandTemplate, error) {
	words, err := shellwords.Parse(line)
	if err != nil {
		return CommandTemplate{}, fmt.Errorf("invalid converter command %q: %w", line, err)
	}
	if len(words) == 0 {
		return CommandTemplate{}, fmt.Errorf("converter command is empty")
	}
	return CommandTemplate{Exec: words[0], Args: words[1:]}, nil
}

// Binary is the executable the converter runs.
func (c *Converter) Binary() string {
	return c.template.Exec
}

// Available reports whether the converter binary can be found.
func (c *Converter) Available() error {
	if _, err := exec.LookPath(c.template.Exec); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConverterNotFound, c.template.Exec, err)
	}
	return nil
}

// Convert writes content to a temporary Markdown file and runs the converter
// to produce output in the given format. The temporary file is always removed.
func (c *Converter) Convert(ctx context.Context, content string, format Format, output string) error {
	if !format.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
	if err := c.Available(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.tempDir, constants.ExportTempName+"-*"+constants.MarkdownExt)
	if err != nil {
		return fmt.Errorf("failed to create export input: %w", err)
	}
	input := tmp.Name()
	defer os.Remove(input)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write export input: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export input: %w", err)
	}

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	cmd := c.command(ctx, commandContext{Input: input, Output: output, Format: format})

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = io.Discard

	c.logger.Debug("running converter", slog.String("exec", cmd.Path), slog.Any("args", cmd.Args[1:]))
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %s", c.template.Exec, msg)
		}
		return fmt.Errorf("%s: %w", c.template.Exec, err)
	}

	return nil
}

func (c *Converter) command(ctx context.Context, cc commandContext) *exec.Cmd {
	args := make([]string, 0, len(c.template.Args))
	for _, arg := range c.template.Args {
		args = append(args, applyPlaceholders(arg, cc))
	}
	return exec.CommandContext(ctx, applyPlaceholders(c.template.Exec, cc), args...)
}

func applyPlaceholders(value string, cc commandContext) string {
	replacements := map[string]string{
		"{input}":  cc.Input,
		"{output}": cc.Output,
		"{format}": string(cc.Format),
	}

	result := value
	for placeholder, replacement := range replacements {
		result = strings.ReplaceAll(result, placeholder, replacement)
	}

	return result
}
