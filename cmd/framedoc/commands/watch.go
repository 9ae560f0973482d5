package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/framedoc/internal/logfields"
	"git.home.luguber.info/inful/framedoc/internal/logging"
	"git.home.luguber.info/inful/framedoc/internal/site"
	"git.home.luguber.info/inful/framedoc/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output string `short:"o" help:"Output directory (overrides output.dir)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, g)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rebuild := func(ctx context.Context) error {
		_, err := rt.builder(site.Options{OutputDir: w.Output, Trigger: "watch"}).Build(ctx)
		rt.flushMetrics()
		return err
	}
	if err := rebuild(ctx); err != nil {
		g.Logger.Warn("Initial build failed", logfields.Error(err))
	}

	dirs := []string{cfg.Data.CharacterDir(), cfg.Templates.Dir}
	return watch.New(dirs, cfg.Watch.Debounce, rebuild, logging.Component(g.Logger, "watch")).Run(ctx)
}
