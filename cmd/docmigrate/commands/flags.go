package commands

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/docmigrate/internal/config"
)

// MigrationFlags override the configuration file. Empty values leave the file's
// setting untouched.
type MigrationFlags struct {
	MkDocsConfig       string   `name:"mkdocs-config" help:"Path to mkdocs.yml"`
	Source             string   `name:"source" help:"MkDocs docs directory"`
	Dest               string   `name:"dest" help:"Hugo content directory to write"`
	AssetsFolder       string   `name:"assets-folder" help:"Directory holding image assets"`
	SnippetSource      string   `name:"snippet-source" help:"Snippet directory to copy (default <source>/snippets)"`
	SnippetDestination string   `name:"snippet-destination" help:"Directory snippets are copied to"`
	Exclude            []string `name:"exclude" help:"Glob of documents to leave out (repeatable)"`
	Workers            int      `name:"workers" short:"w" help:"Documents converted in parallel"`
	ReportFormat       string   `name:"report-format" help:"Summary format (text|json)"`
	Manifest           string   `name:"manifest" help:"Write a JSON run manifest to this path"`
	MetricsFile        string   `name:"metrics-file" help:"Write Prometheus metrics to this textfile"`
}

// apply copies every non-empty flag onto cfg.
func (f *MigrationFlags) apply(cfg *config.Config) {
	overrideString(&cfg.MkDocsConfig, f.MkDocsConfig)
	overrideString(&cfg.Source, f.Source)
	overrideString(&cfg.Dest, f.Dest)
	overrideString(&cfg.AssetsFolder, f.AssetsFolder)
	overrideString(&cfg.SnippetSource, f.SnippetSource)
	overrideString(&cfg.SnippetDestination, f.SnippetDestination)
	overrideString(&cfg.Manifest, f.Manifest)
	overrideString(&cfg.MetricsFile, f.MetricsFile)
	if f.ReportFormat != "" {
		cfg.ReportFormat = config.ReportFormat(f.ReportFormat)
	}
	if len(f.Exclude) > 0 {
		cfg.Exclude = f.Exclude
	}
	if f.Workers > 0 {
		cfg.Workers = f.Workers
	}
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// loadConfig reads the configuration file, applies flag overrides and validates
// the result. A missing default configuration file is not an error so the whole
// run can be described with flags.
func loadConfig(root *CLI, flags *MigrationFlags) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		if _, statErr := os.Stat(root.Config); !errors.Is(statErr, fs.ErrNotExist) {
			return nil, err
		}
		slog.Debug("No configuration file, using flags only", slog.String("path", root.Config))
		cfg = config.Default()
	}

	flags.apply(cfg)
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	root.applyLogLevel(cfg)
	return cfg, nil
}
