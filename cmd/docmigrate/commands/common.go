package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docmigrate/internal/config"
)

// Global is passed to every command's Run method.
type Global struct {
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docmigrate.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Convert    ConvertCmd    `cmd:"" help:"Convert an MkDocs tree into Hugo content"`
	Watch      WatchCmd      `cmd:"" help:"Convert, then convert again whenever the sources change"`
	Init       InitCmd       `cmd:"" help:"Write an example configuration file"`
	NewVersion NewVersionCmd `cmd:"" name:"new-version" help:"Snapshot the unreleased docs as a new version"`

	level slog.LevelVar `kong:"-"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	if c.Verbose {
		c.level.Set(slog.LevelDebug)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &c.level}))
	slog.SetDefault(logger)
	return nil
}

// applyLogLevel switches to the configured level unless --verbose was given.
func (c *CLI) applyLogLevel(cfg *config.Config) {
	if c.Verbose {
		return
	}
	c.level.Set(cfg.SlogLevel())
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
