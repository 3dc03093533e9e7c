package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/nervous/internal/convert"
	"github.com/Paintersrp/nervous/internal/prompt"
	"github.com/Paintersrp/nervous/internal/state"
	"github.com/Paintersrp/nervous/pkg/arg"
	"github.com/Paintersrp/nervous/pkg/flags"
)

func NewCmdExport(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "export <file>",
		Aliases: []string{"x", "convert"},
		Short:   "Convert a document to docx, pdf, odt or html.",
		Long: heredoc.Doc(fmt.Sprintf(`
			Converts a Markdown document with the configured converter (pandoc by
			default). The document is converted as it would be saved, with its
			modified timestamp refreshed, but the source file is left untouched.

			The destination may be a file, a directory ending in a slash, or an
			s3://bucket/key location. Without --output the destination is asked
			for on a terminal, and otherwise sits next to the source.

			Formats: %s
		`, formatNames())),
		Example: heredoc.Doc(`
			nervous export notes/report.md --format pdf
			nervous export notes/report.md -f html -o site/
			nervous export notes/report.md -f docx -o s3://team-docs/reports/
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, s)
		},
	}

	flags.AddFormat(cmd)
	flags.AddOutput(cmd)
	flags.AddConverter(cmd)
	return cmd
}

func run(cmd *cobra.Command, args []string, s *state.State) error {
	path, err := arg.HandlePath(args)
	if err != nil {
		return err
	}
	path = s.Handler.Resolve(path)

	if err := flags.HandleConverter(cmd, s); err != nil {
		return err
	}

	format, err := flags.HandleFormat(cmd, s)
	if err != nil {
		return err
	}

	output, err := flags.HandleOutput(cmd)
	if err != nil {
		return err
	}
	if output == "" && !prompt.Interactive() {
		output = besideSource(path, format)
	}

	content, err := s.Handler.ReadFile(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sess := s.NewSession(&prompt.Terminal{Handler: s.Handler, Destination: output})
	sess.Load(path, content)

	res := sess.Export(ctx, format)
	switch {
	case res.Cancelled():
		fmt.Fprintln(cmd.OutOrStdout(), "Export cancelled")
		return nil
	case !res.OK():
		return res.Err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", filepath.Base(path), res.Path)
	return nil
}

func besideSource(path string, format convert.Format) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + format.Extension()
}

func formatNames() string {
	names := make([]string, 0, len(convert.Formats))
	for _, f := range convert.Formats {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}
