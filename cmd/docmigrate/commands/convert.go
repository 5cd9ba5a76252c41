package commands

import (
	"context"
	"io"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docmigrate/internal/config"
	"git.home.luguber.info/inful/docmigrate/internal/logfields"
	"git.home.luguber.info/inful/docmigrate/internal/metrics"
	"git.home.luguber.info/inful/docmigrate/internal/migrate"
	"git.home.luguber.info/inful/docmigrate/internal/report"
)

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	MigrationFlags `embed:""`
}

func (c *ConvertCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, &c.MigrationFlags)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	return newRunner(cfg, g.Stdout).run(ctx)
}

// runner converts with one configuration, possibly many times in watch mode.
// Metrics accumulate across runs.
type runner struct {
	cfg      *config.Config
	out      io.Writer
	registry *prom.Registry
	recorder metrics.Recorder
}

func newRunner(cfg *config.Config, out io.Writer) *runner {
	r := &runner{cfg: cfg, out: out, recorder: metrics.NoopRecorder{}}
	if cfg.MetricsFile != "" {
		r.registry = prom.NewRegistry()
		r.recorder = metrics.NewPrometheusRecorder(r.registry)
	}
	return r
}

func (r *runner) run(ctx context.Context) error {
	summary, err := migrate.New(r.cfg, migrate.WithRecorder(r.recorder)).Run(ctx)
	if err != nil {
		return err
	}
	if err := report.NewFormatter(string(r.cfg.ReportFormat)).Format(r.out, summary); err != nil {
		return err
	}
	if r.registry != nil {
		if err := metrics.WriteTextfile(r.cfg.MetricsFile, r.registry); err != nil {
			return err
		}
		slog.Debug("Metrics written", logfields.Path(r.cfg.MetricsFile))
	}
	return nil
}
