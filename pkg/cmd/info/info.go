package info

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/nervous/internal/frontmatter"
	"github.com/Paintersrp/nervous/internal/parser"
	"github.com/Paintersrp/nervous/internal/state"
	"github.com/Paintersrp/nervous/pkg/arg"
)

const timeDisplay = "2006-01-02 15:04"

var (
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#bd93f9"))
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8be9fd"))
)

func NewCmdInfo(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "info <file>",
		Aliases: []string{"i", "stat"},
		Short:   "Show a document's metadata and outline.",
		Long: heredoc.Doc(`
			Prints the metadata block of a document, its word, link and task
			counts, and the outline of its headings. The document is not modified.
		`),
		Example: heredoc.Doc(`
			nervous info notes/draft.md
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, s)
		},
	}
	return cmd
}

func run(cmd *cobra.Command, args []string, s *state.State) error {
	path, err := arg.HandlePath(args)
	if err != nil {
		return err
	}
	path = s.Handler.Resolve(path)

	content, err := s.Handler.ReadFile(path)
	if err != nil {
		return err
	}

	meta, ok, err := frontmatter.MetaOf(content)
	if err != nil {
		s.Logger.Warn("unreadable metadata block", slog.String("path", path), slog.String("error", err.Error()))
	}

	summary := parser.Analyze(frontmatter.Split(content).Body)
	render(cmd.OutOrStdout(), path, meta, ok && err == nil, summary)
	return nil
}

func render(w io.Writer, path string, meta frontmatter.Meta, hasMeta bool, summary parser.Summary) {
	line := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label+":"), value)
	}

	line("File", path)
	if hasMeta {
		line("Title", meta.Title)
		if !meta.Created.IsZero() {
			line("Created", meta.Created.Local().Format(timeDisplay))
		}
		if !meta.Modified.IsZero() {
			line("Modified", meta.Modified.Local().Format(timeDisplay))
		}
		if len(meta.Tags) > 0 {
			line("Tags", strings.Join(meta.Tags, ", "))
		} else {
			line("Tags", "none")
		}
	} else {
		line("Metadata", "none")
	}

	line("Words", fmt.Sprint(summary.Words))
	line("Links", fmt.Sprint(summary.Links))
	line("Tasks", fmt.Sprintf("%d/%d done", summary.DoneTasks, summary.Tasks))

	if len(summary.Headings) == 0 {
		return
	}
	fmt.Fprintln(w, labelStyle.Render("Outline:"))
	for _, h := range summary.Headings {
		indent := strings.Repeat("  ", h.Level-1)
		fmt.Fprintf(w, "  %s%s\n", indent, headingStyle.Render(h.Text))
	}
}
