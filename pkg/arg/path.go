package arg

import (
	"fmt"
	"strings"
)

func HandlePath(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf(
			"error: No file given. Try again with a path to a Markdown document",
		)
	}
	return strings.TrimSpace(args[0]), nil
}
