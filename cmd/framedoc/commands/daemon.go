package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/framedoc/internal/logfields"
	"git.home.luguber.info/inful/framedoc/internal/logging"
	"git.home.luguber.info/inful/framedoc/internal/scheduler"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Cron string `help:"Cron expression (overrides schedule.cron)"`
}

func (d *DaemonCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if d.Cron != "" {
		cfg.Schedule.Cron = d.Cron
	}
	rt, err := newRuntime(cfg, g)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rt.syncAndBuild(ctx, "daemon", false); err != nil {
		g.Logger.Warn("Initial build failed", logfields.Error(err))
	}

	s, err := scheduler.New(logging.Component(g.Logger, "scheduler"))
	if err != nil {
		return err
	}
	if _, err := s.ScheduleCron("regenerate", cfg.Schedule.Cron, func(context.Context) error {
		return rt.syncAndBuild(ctx, "daemon", true)
	}); err != nil {
		return err
	}
	s.Start()

	g.Logger.Info("Daemon started, waiting for shutdown signal")
	<-ctx.Done()
	g.Logger.Info("Shutdown signal received, stopping daemon")
	return s.Stop()
}
