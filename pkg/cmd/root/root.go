package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/nervous/internal/constants"
	"github.com/Paintersrp/nervous/internal/state"
	"github.com/Paintersrp/nervous/pkg/cmd/export"
	"github.com/Paintersrp/nervous/pkg/cmd/info"
	"github.com/Paintersrp/nervous/pkg/cmd/new"
	"github.com/Paintersrp/nervous/pkg/cmd/open"
	"github.com/Paintersrp/nervous/pkg/cmd/save"
)

func NewCmdRoot(s *state.State) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     "nervous [file]",
		Short:   "A terminal Markdown editor that keeps your metadata current.",
		Version: constants.Version,
		Long: heredoc.Doc(`
			nervous edits Markdown documents that start with a YAML metadata block.
			The block is kept out of the way while you write, its modified time is
			refreshed on every save, and documents without one get one.

			Documents can be exported to docx, pdf, odt or html through pandoc, and
			exports can be published straight to S3.
		`),
		Example: heredoc.Doc(`
			nervous notes/today.md
			nervous export notes/today.md --format pdf
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.Reconfigure(viper.GetViper())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return open.RunEditor(s, path)
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("preview-style", "", "Glamour style for previews")
	pf.Bool("confirm-discard", false, "Ask before discarding unsaved changes")
	pf.StringP("dir", "d", "", "Directory that relative paths are resolved against")

	bindings := map[string]string{
		"log_level":       "log-level",
		"preview_style":   "preview-style",
		"confirm_discard": "confirm-discard",
		"default_dir":     "dir",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, pf.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	cmd.AddCommand(
		open.NewCmdOpen(s),
		new.NewCmdNew(s),
		save.NewCmdSave(s),
		export.NewCmdExport(s),
		info.NewCmdInfo(s),
	)

	return cmd, nil
}
