// Package prompt asks questions on the terminal for the headless commands.
package prompt

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/erikgeiser/promptkit"
	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/erikgeiser/promptkit/selection"
	"github.com/erikgeiser/promptkit/textinput"
	"golang.org/x/term"

	"github.com/Paintersrp/nervous/internal/convert"
	"github.com/Paintersrp/nervous/internal/handler"
	"github.com/Paintersrp/nervous/internal/session"
)

// ErrNotInteractive is returned when a prompt is needed but stdin or stdout
// is not a terminal.
var ErrNotInteractive = errors.New("a value is required and the terminal is not interactive")

var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Interactive reports whether prompts can be shown.
func Interactive() bool {
	return isTerminal()
}

func mapErr(err error) error {
	if errors.Is(err, promptkit.ErrAborted) {
		return session.ErrCancelled
	}
	return err
}

// Text asks for a line of text, prefilled with initial.
func Text(label, initial string) (string, error) {
	if !isTerminal() {
		return "", ErrNotInteractive
	}

	input := textinput.New(label)
	input.InitialValue = initial
	input.Validate = func(value string) error {
		if strings.TrimSpace(value) == "" {
			return errors.New("a value is required")
		}
		return nil
	}

	value, err := input.RunPrompt()
	if err != nil {
		return "", mapErr(err)
	}
	return strings.TrimSpace(value), nil
}

// Confirm asks a yes/no question.
func Confirm(label string, def bool) (bool, error) {
	if !isTerminal() {
		return false, ErrNotInteractive
	}

	value := confirmation.No
	if def {
		value = confirmation.Yes
	}

	ok, err := confirmation.New(label, value).RunPrompt()
	if err != nil {
		return false, mapErr(err)
	}
	return ok, nil
}

// Format asks for an export format, starting the cursor at def.
func Format(label string, def convert.Format) (convert.Format, error) {
	if !isTerminal() {
		return "", ErrNotInteractive
	}

	choices := orderedFormats(def)
	sp := selection.New(label, choices)
	sp.PageSize = len(choices)
	sp.Filter = nil

	choice, err := sp.RunPrompt()
	if err != nil {
		return "", mapErr(err)
	}
	return choice, nil
}

func orderedFormats(def convert.Format) []convert.Format {
	choices := make([]convert.Format, 0, len(convert.Formats))
	if def.Valid() {
		choices = append(choices, def)
	}
	for _, f := range convert.Formats {
		if f != def {
			choices = append(choices, f)
		}
	}
	return choices
}

// Finder picks a document under dir. fzf.FuzzyFinder is the terminal one.
type Finder interface {
	Find(dir, query string) (string, error)
}

// Terminal is a session prompter backed by terminal prompts and a document
// finder.
type Terminal struct {
	Handler *handler.FileHandler
	Finder  Finder
	Dir     string
	Query   string

	// Destination, when set, answers save prompts without asking.
	Destination string
}

func (t *Terminal) PromptOpen(ctx context.Context) (string, string, error) {
	if t.Finder == nil {
		return "", "", errors.New("no document finder configured")
	}

	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	path, err := t.Finder.Find(t.Dir, t.Query)
	if err != nil {
		return "", "", err
	}

	content, err := t.Handler.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return path, content, nil
}

func (t *Terminal) PromptSaveDestination(ctx context.Context, suggested string) (string, error) {
	if t.Destination != "" {
		return t.Destination, nil
	}
	return Text("Save to:", suggested)
}
