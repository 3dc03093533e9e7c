package new

import (
	"context"
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/nervous/internal/frontmatter"
	"github.com/Paintersrp/nervous/internal/handler"
	"github.com/Paintersrp/nervous/internal/prompt"
	"github.com/Paintersrp/nervous/internal/session"
	"github.com/Paintersrp/nervous/internal/state"
	"github.com/Paintersrp/nervous/pkg/arg"
	"github.com/Paintersrp/nervous/pkg/cmd/open"
	"github.com/Paintersrp/nervous/pkg/flags"
)

func NewCmdNew(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "new <file>",
		Aliases: []string{"n", "create"},
		Short:   "Create a Markdown document with a fresh metadata block.",
		Long: heredoc.Doc(`
			Creates a document holding only a metadata block: title, created and
			modified timestamps, and an empty tag list. The .md extension is added
			when the path has none.

			An existing file is only replaced after confirmation, or with --force.
		`),
		Example: heredoc.Doc(`
			nervous new drafts/launch
			nervous new drafts/launch --title "Launch Plan" --edit
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, s)
		},
	}

	flags.AddTitle(cmd)
	cmd.Flags().Bool("force", false, "Replace an existing file without asking")
	cmd.Flags().BoolP("edit", "e", false, "Open the new document in the editor")
	return cmd
}

func run(cmd *cobra.Command, args []string, s *state.State) error {
	path, err := arg.HandlePath(args)
	if err != nil {
		return err
	}
	path = s.Handler.Resolve(handler.WithMarkdownExt(path))

	title, err := flags.HandleTitle(cmd, path)
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	edit, _ := cmd.Flags().GetBool("edit")

	proceed, err := confirmOverwrite(s, path, force)
	if err != nil {
		return err
	}
	if !proceed {
		fmt.Fprintln(cmd.OutOrStdout(), "Kept existing file", path)
		return nil
	}

	sess := s.NewSession(&prompt.Terminal{Handler: s.Handler})
	sess.Load(path, frontmatter.Join(s.Engine.Generate(title), ""))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res := sess.Save(ctx, false)
	if !res.OK() {
		return res.Err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Created", res.Path)

	if edit {
		return open.RunEditor(s, res.Path)
	}
	return nil
}

func confirmOverwrite(s *state.State, path string, force bool) (bool, error) {
	exists, err := s.Handler.Exists(path)
	if err != nil {
		return false, err
	}
	if !exists || force {
		return true, nil
	}

	ok, err := prompt.Confirm(fmt.Sprintf("%s already exists. Replace it?", path), false)
	switch {
	case errors.Is(err, prompt.ErrNotInteractive):
		return false, fmt.Errorf("%s already exists, use --force to replace it", path)
	case errors.Is(err, session.ErrCancelled):
		return false, nil
	case err != nil:
		return false, err
	}
	return ok, nil
}
