package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func AddOutput(cmd *cobra.Command) {
	cmd.Flags().
		StringP(
			"output",
			"o",
			"",
			"Destination file, directory (trailing /) or s3://bucket/key",
		)
}

func HandleOutput(cmd *cobra.Command) (string, error) {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", fmt.Errorf("error retrieving output flag: %w", err)
	}
	return strings.TrimSpace(output), nil
}
