package fzf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/muesli/termenv"

	"github.com/Paintersrp/nervous/internal/frontmatter"
	"github.com/Paintersrp/nervous/internal/handler"
	"github.com/Paintersrp/nervous/internal/session"
)

// ErrNoDocuments is returned when the search directory holds no Markdown files.
var ErrNoDocuments = errors.New("no markdown documents found")

// FuzzyFinder picks a Markdown document from a directory with a rendered
// preview.
type FuzzyFinder struct {
	handler *handler.FileHandler
	Header  string
	Style   string

	files    []string
	renderer *glamour.TermRenderer

	find func(files []string, label func(int) string, opts ...fuzzyfinder.Option) (int, error)
}

func NewFuzzyFinder(h *handler.FileHandler, header, style string) *FuzzyFinder {
	if style == "" {
		style = "dracula"
	}
	return &FuzzyFinder{
		handler: h,
		Header:  header,
		Style:   style,
		find: func(files []string, label func(int) string, opts ...fuzzyfinder.Option) (int, error) {
			return fuzzyfinder.Find(files, label, opts...)
		},
	}
}

// Find lists documents under dir and returns the chosen path. Aborting the
// finder yields session.ErrCancelled.
func (f *FuzzyFinder) Find(dir, query string) (string, error) {
	files, err := f.handler.WalkFiles(dir, nil)
	if err != nil {
		return "", fmt.Errorf("error listing files: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoDocuments, f.handler.Resolve(dir))
	}
	f.files = files

	labels := make([]string, len(files))
	for i, file := range files {
		labels[i] = f.label(file)
	}

	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(f.renderMarkdownPreview),
	}
	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}
	if f.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(f.Header))
	}

	idx, err := f.find(files, func(i int) string { return labels[i] }, options...)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", session.ErrCancelled
		}
		return "", fmt.Errorf("error selecting file: %w", err)
	}
	if idx < 0 || idx >= len(files) {
		return "", session.ErrCancelled
	}

	return files[idx], nil
}

func (f *FuzzyFinder) label(file string) string {
	title := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	var tags []string
	if content, err := os.ReadFile(file); err == nil {
		if meta, ok, err := frontmatter.MetaOf(string(content)); ok && err == nil {
			if meta.Title != "" {
				title = meta.Title
			}
			tags = meta.Tags
		}
	}

	if len(tags) == 0 {
		return fmt.Sprintf("%s [No tags] ", title)
	}
	return fmt.Sprintf("%s [Tags: %s] ", title, strings.Join(tags, ", "))
}

func (f *FuzzyFinder) renderMarkdownPreview(i, w, h int) string {
	if i == -1 || i >= len(f.files) {
		return ""
	}

	content, err := os.ReadFile(f.files[i])
	if err != nil {
		return "Error reading file"
	}

	if f.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(f.Style),
			glamour.WithWordWrap(100),
			glamour.WithColorProfile(termenv.ANSI256),
		)
		if err != nil {
			return "Error creating renderer"
		}
		f.renderer = r
	}

	markdown, err := f.renderer.Render(frontmatter.Split(string(content)).Body)
	if err != nil {
		return "Error rendering markdown"
	}

	return markdown
}
