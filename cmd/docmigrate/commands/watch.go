package commands

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docmigrate/internal/config"
	"git.home.luguber.info/inful/docmigrate/internal/logfields"
	"git.home.luguber.info/inful/docmigrate/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	MigrationFlags `embed:""`
	Debounce       time.Duration `help:"Quiet period before a change triggers a run" default:"300ms"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, &w.MigrationFlags)
	if err != nil {
		return err
	}
	watcher, err := watch.New(newRunner(cfg, g.Stdout).run, watchOptions(cfg, w.Debounce))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	slog.Info("Watching for changes", logfields.Path(cfg.Source))
	return watcher.Run(ctx)
}

// watchOptions watches the inputs of a run and ignores everything it writes.
func watchOptions(cfg *config.Config, debounce time.Duration) watch.Options {
	dirs := []string{cfg.Source}
	if cfg.AssetsFolder != cfg.Source {
		dirs = append(dirs, cfg.AssetsFolder)
	}
	return watch.Options{
		Dirs:     dirs,
		Files:    []string{cfg.MkDocsConfig},
		Ignore:   []string{cfg.Dest, cfg.SnippetDestination, cfg.Manifest, cfg.MetricsFile},
		Debounce: debounce,
	}
}
