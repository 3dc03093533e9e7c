package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/nervous/internal/constants"
)

const starterHeader = "# nervous configuration. Every key can also be set with a NERVOUS_* variable.\n"

func GetConfigPath(homeDir string) string {
	return filepath.Join(
		homeDir,
		constants.ConfigDir,
		constants.ConfigFile+"."+constants.ConfigFileType,
	)
}

// EnsureConfigExists writes a starter config holding the defaults when none
// exists yet. An existing file is never touched.
func EnsureConfigExists(homeDir string) error {
	configPath := GetConfigPath(homeDir)

	_, err := os.Stat(configPath)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to check config file existence: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(Default(homeDir))
	if err != nil {
		return fmt.Errorf("failed to encode starter config: %w", err)
	}

	if err := os.WriteFile(configPath, append([]byte(starterHeader), data...), 0o644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	return nil
}
