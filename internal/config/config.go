// Package config loads the migration settings from a YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
	"git.home.luguber.info/inful/docmigrate/internal/foundation/normalization"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "docmigrate.yaml"

// ReportFormat selects how the run summary is printed.
type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
)

// LogLevel is the minimum level written to the log.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var (
	reportFormatNormalizer = normalization.NewNormalizer(map[string]ReportFormat{
		"text": ReportFormatText,
		"json": ReportFormatJSON,
	}, ReportFormatText)

	logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
		"debug":   LogLevelDebug,
		"info":    LogLevelInfo,
		"warn":    LogLevelWarn,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
	}, LogLevelInfo)
)

func init() {
	// Report validation failures with the YAML key names users write.
	validation.ErrorTag = "yaml"
}

// Config is the full set of migration settings.
type Config struct {
	MkDocsConfig       string       `yaml:"mkdocs_config"`
	Source             string       `yaml:"source"`
	Dest               string       `yaml:"dest"`
	AssetsFolder       string       `yaml:"assets_folder"`
	SnippetSource      string       `yaml:"snippet_source,omitempty"` // defaults to <source>/snippets
	SnippetDestination string       `yaml:"snippet_destination"`
	Exclude            []string     `yaml:"exclude,omitempty"`
	Workers            int          `yaml:"workers"`
	ReportFormat       ReportFormat `yaml:"report_format"`
	Manifest           string       `yaml:"manifest,omitempty"`
	MetricsFile        string       `yaml:"metrics_file,omitempty"`
	LogLevel           LogLevel     `yaml:"log_level"`
}

// Default returns a Config holding only default values.
func Default() *Config {
	return &Config{
		Workers:      1,
		ReportFormat: ReportFormatText,
		LogLevel:     LogLevelInfo,
	}
}

// Load reads configPath on top of the defaults. A .env file in the working
// directory is loaded first; ${VAR} references in the file are expanded.
// The result is normalized but not validated, so flags can still fill gaps.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Debug("Could not load .env file", slog.String("error", err.Error()))
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "read configuration file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "parse configuration file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize case-folds enums and fills derived defaults.
func (c *Config) Normalize() error {
	format, err := reportFormatNormalizer.NormalizeWithError(string(c.ReportFormat))
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryValidation, "report_format").Build()
	}
	c.ReportFormat = format

	level, err := logLevelNormalizer.NormalizeWithError(string(c.LogLevel))
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryValidation, "log_level").Build()
	}
	c.LogLevel = level

	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.SnippetSource == "" && c.Source != "" {
		c.SnippetSource = filepath.Join(c.Source, "snippets")
	}
	return nil
}

// Validate checks that every required setting is present and in range.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.MkDocsConfig, validation.Required),
		validation.Field(&c.Source, validation.Required),
		validation.Field(&c.Dest, validation.Required),
		validation.Field(&c.AssetsFolder, validation.Required),
		validation.Field(&c.SnippetDestination, validation.Required),
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(256)),
		validation.Field(&c.ReportFormat, validation.In(ReportFormatText, ReportFormatJSON)),
		validation.Field(&c.LogLevel, validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)),
	)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryValidation, "invalid configuration").Build()
	}
	return nil
}

// SlogLevel maps LogLevel onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init writes an example configuration file to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return derrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			UserAction().
			Build()
	}

	example := Config{
		MkDocsConfig:       "mkdocs.yml",
		Source:             "docs",
		Dest:               "content/en/docs",
		AssetsFolder:       "static",
		SnippetDestination: "snippets",
		Exclude:            []string{"snippets/**"},
		Workers:            4,
		ReportFormat:       ReportFormatText,
		Manifest:           "${DOCMIGRATE_MANIFEST}",
		LogLevel:           LogLevelInfo,
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryInternal, "marshal example configuration").Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write configuration file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
