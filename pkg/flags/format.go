package flags

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/nervous/internal/convert"
	"github.com/Paintersrp/nervous/internal/prompt"
	"github.com/Paintersrp/nervous/internal/state"
)

func AddFormat(cmd *cobra.Command) {
	cmd.Flags().
		StringP(
			"format",
			"f",
			"",
			"Export format: docx, pdf, odt or html (default from config)",
		)
}

// HandleFormat returns the --format flag, asks for one on a terminal, or falls
// back to the configured default.
func HandleFormat(cmd *cobra.Command, s *state.State) (convert.Format, error) {
	value, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("error retrieving format flag: %w", err)
	}

	if cmd.Flags().Changed("format") {
		return convert.ParseFormat(value)
	}

	if prompt.Interactive() {
		return prompt.Format("Export format:", s.Config.Format())
	}

	return s.Config.Format(), nil
}
