package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/nervous/internal/frontmatter"
)

func AddTitle(cmd *cobra.Command) {
	cmd.Flags().
		StringP(
			"title",
			"t",
			"",
			"Title for the metadata block (default is the file name)",
		)
}

func HandleTitle(cmd *cobra.Command, path string) (string, error) {
	title, err := cmd.Flags().GetString("title")
	if err != nil {
		return "", fmt.Errorf("error retrieving title flag: %w", err)
	}
	if strings.TrimSpace(title) == "" {
		return frontmatter.TitleFromPath(path), nil
	}
	return strings.TrimSpace(title), nil
}
