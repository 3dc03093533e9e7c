package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/nervous/internal/constants"
	"github.com/Paintersrp/nervous/internal/convert"
)

type S3Config struct {
	Region          string `yaml:"region"            json:"region"`
	Endpoint        string `yaml:"endpoint"          json:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"     json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"        json:"path_style"`
}

type Config struct {
	Converter      convert.CommandTemplate `yaml:"converter"       json:"converter"`
	DefaultFormat  string                  `yaml:"default_format"  json:"default_format"`
	DefaultDir     string                  `yaml:"default_dir"     json:"default_dir"`
	ConfirmDiscard bool                    `yaml:"confirm_discard" json:"confirm_discard"`
	PreviewStyle   string                  `yaml:"preview_style"   json:"preview_style"`
	LogFile        string                  `yaml:"log_file"        json:"log_file"`
	LogLevel       string                  `yaml:"log_level"       json:"log_level"`
	S3             S3Config                `yaml:"s3"              json:"s3"`

	home string `yaml:"-"`
}

const (
	defaultPreviewStyle = "dracula"
	defaultLogLevel     = "info"
)

var ValidLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var ValidPreviewStyles = map[string]bool{
	"dracula": true,
	"dark":    true,
	"light":   true,
	"notty":   true,
	"pink":    true,
	"ascii":   true,
}

func Default(home string) *Config {
	cfg := &Config{home: home}
	cfg.ensureDefaults()
	return cfg
}

func (cfg *Config) ensureDefaults() {
	if strings.TrimSpace(cfg.Converter.Exec) == "" {
		cfg.Converter = convert.DefaultCommand
	}
	if strings.TrimSpace(cfg.DefaultFormat) == "" {
		cfg.DefaultFormat = string(convert.PDF)
	}
	if strings.TrimSpace(cfg.PreviewStyle) == "" {
		cfg.PreviewStyle = defaultPreviewStyle
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = defaultLogLevel
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if strings.TrimSpace(cfg.LogFile) == "" && cfg.home != "" {
		cfg.LogFile = filepath.Join(filepath.Dir(GetConfigPath(cfg.home)), constants.LogFile)
	}
}

// Load reads the config file under home, fills in defaults and applies
// environment overrides.
func Load(home string) (*Config, error) {
	path := GetConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	cfg.home = home
	cfg.ensureDefaults()

	if err := cfg.ApplyOverrides(viper.GetViper()); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// BindEnv makes every config key overridable through NERVOUS_* variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// ApplyOverrides copies values set through flags or the environment onto cfg.
// The converter key takes a shell-style command line.
func (cfg *Config) ApplyOverrides(v *viper.Viper) error {
	if v == nil {
		return nil
	}

	if v.IsSet("converter") {
		if line := strings.TrimSpace(v.GetString("converter")); line != "" {
			tmpl, err := convert.ParseCommandLine(line)
			if err != nil {
				return err
			}
			cfg.Converter = tmpl
		}
	}

	strs := map[string]*string{
		"default_format":       &cfg.DefaultFormat,
		"default_dir":          &cfg.DefaultDir,
		"preview_style":        &cfg.PreviewStyle,
		"log_file":             &cfg.LogFile,
		"log_level":            &cfg.LogLevel,
		"s3.region":            &cfg.S3.Region,
		"s3.endpoint":          &cfg.S3.Endpoint,
		"s3.access_key_id":     &cfg.S3.AccessKeyID,
		"s3.secret_access_key": &cfg.S3.SecretAccessKey,
	}
	for key, target := range strs {
		if v.IsSet(key) {
			if value := strings.TrimSpace(v.GetString(key)); value != "" {
				*target = value
			}
		}
	}

	if v.IsSet("confirm_discard") {
		cfg.ConfirmDiscard = v.GetBool("confirm_discard")
	}
	if v.IsSet("s3.path_style") {
		cfg.S3.PathStyle = v.GetBool("s3.path_style")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	return nil
}

func (cfg *Config) Validate() error {
	if _, err := convert.ParseFormat(cfg.DefaultFormat); err != nil {
		return &ConfigInitError{Key: "default_format", msg: err.Error(), Err: err}
	}
	if !ValidLogLevels[cfg.LogLevel] {
		return &ConfigInitError{
			Key: "log_level",
			msg: fmt.Sprintf("%q. Please choose from 'debug', 'info', 'warn', or 'error'", cfg.LogLevel),
		}
	}
	if !ValidPreviewStyles[cfg.PreviewStyle] {
		return &ConfigInitError{Key: "preview_style", msg: fmt.Sprintf("%q", cfg.PreviewStyle)}
	}
	if strings.TrimSpace(cfg.Converter.Exec) == "" {
		return &ConfigInitError{Key: "converter", msg: "exec cannot be empty"}
	}
	return nil
}

// Format returns the configured default export format.
func (cfg *Config) Format() convert.Format {
	f, err := convert.ParseFormat(cfg.DefaultFormat)
	if err != nil {
		return convert.PDF
	}
	return f
}

func (cfg *Config) GetConfigPath() string {
	if cfg.home != "" {
		return GetConfigPath(cfg.home)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return GetConfigPath(homeDir)
}

func (cfg *Config) Save() error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	configPath := cfg.GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}
