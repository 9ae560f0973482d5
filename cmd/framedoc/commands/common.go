// Package commands implements the framedoc command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/framedoc/internal/config"
	"git.home.luguber.info/inful/framedoc/internal/logging"
)

// Global is shared state bound into every command.
type Global struct {
	Logger  *slog.Logger
	Counter *logging.Counter
	// Stdout receives user-facing output (tables, summaries).
	Stdout io.Writer
	// Stderr receives log records.
	Stderr io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"framedoc.yaml" env:"FRAMEDOC_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" default:"withargs" help:"Generate the character pages and index"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Sync    SyncCmd    `cmd:"" help:"Pull the character data repository, then rebuild"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild whenever character data or templates change"`
	Daemon  DaemonCmd  `cmd:"" help:"Sync and rebuild on the configured cron schedule"`
	History HistoryCmd `cmd:"" help:"Show recent builds"`
}

// AfterApply runs after flag parsing and installs a provisional logger.
// Commands reconfigure it once the configuration file is loaded.
func (c *CLI) AfterApply(g *Global) error {
	if g.Stdout == nil {
		g.Stdout = os.Stdout
	}
	if g.Stderr == nil {
		g.Stderr = os.Stderr
	}
	if g.Counter == nil {
		g.Counter = &logging.Counter{}
	}
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = logging.New(g.Stderr, logging.FormatText, level, g.Counter)
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig loads the configuration and applies its logging settings.
// -v always wins over the configured level.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	path := c.Config
	if _, err := os.Stat(path); err != nil && path == "framedoc.yaml" {
		// The default config file is optional.
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level.Slog()
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = logging.New(g.Stderr, logging.Format(cfg.Logging.Format), level, g.Counter)
	slog.SetDefault(g.Logger)

	for _, w := range cfg.Warnings {
		g.Logger.Warn("Configuration normalized", slog.String("detail", w))
	}
	return cfg, nil
}
