package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/nervous/internal/convert"
	"github.com/Paintersrp/nervous/internal/state"
)

func AddConverter(cmd *cobra.Command) {
	cmd.Flags().
		String(
			"converter",
			"",
			"Converter command line, e.g. 'pandoc {input} -o {output} --pdf-engine=xelatex'",
		)
}

// HandleConverter replaces the configured converter when --converter is set.
func HandleConverter(cmd *cobra.Command, s *state.State) error {
	line, err := cmd.Flags().GetString("converter")
	if err != nil {
		return fmt.Errorf("error retrieving converter flag: %w", err)
	}
	if strings.TrimSpace(line) == "" {
		return nil
	}

	tmpl, err := convert.ParseCommandLine(line)
	if err != nil {
		return err
	}
	s.Config.Converter = tmpl
	return s.Reconfigure(nil)
}
