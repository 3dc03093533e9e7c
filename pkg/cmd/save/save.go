package save

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/nervous/internal/prompt"
	"github.com/Paintersrp/nervous/internal/state"
	"github.com/Paintersrp/nervous/pkg/arg"
)

func NewCmdSave(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "save <file>",
		Aliases: []string{"touch"},
		Short:   "Re-save a document, refreshing its modified timestamp.",
		Long: heredoc.Doc(`
			Loads a document and saves it in place. A document without a metadata
			block gets one, titled after the file name. An existing block only has
			its modified line updated; every other line is kept as written.
		`),
		Example: heredoc.Doc(`
			nervous save notes/draft.md
			nervous touch notes/draft.md
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

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sess := s.NewSession(&prompt.Terminal{Handler: s.Handler})
	sess.Load(path, content)

	res := sess.Save(ctx, false)
	if !res.OK() {
		return res.Err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Saved", res.Path)
	return nil
}
