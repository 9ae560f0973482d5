package commands

import (
	"context"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/framedoc/internal/config"
	"git.home.luguber.info/inful/framedoc/internal/events"
	"git.home.luguber.info/inful/framedoc/internal/history"
	"git.home.luguber.info/inful/framedoc/internal/logfields"
	"git.home.luguber.info/inful/framedoc/internal/logging"
	"git.home.luguber.info/inful/framedoc/internal/metrics"
	"git.home.luguber.info/inful/framedoc/internal/retry"
	"git.home.luguber.info/inful/framedoc/internal/site"
	"git.home.luguber.info/inful/framedoc/internal/source"
)

// runtime owns the collaborators shared by the build-running commands.
type runtime struct {
	cfg      *config.Config
	global   *Global
	history  *history.Store
	events   events.Publisher
	recorder metrics.Recorder
	prom     *metrics.PrometheusRecorder
}

func newRuntime(cfg *config.Config, g *Global) (*runtime, error) {
	rt := &runtime{cfg: cfg, global: g, events: events.Noop{}, recorder: metrics.NoopRecorder{}}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		rt.history = store
	}

	pub, err := events.New(events.Options{
		URL:       cfg.Events.NATSURL,
		Subject:   cfg.Events.Subject,
		Timeout:   cfg.Events.Timeout,
		JetStream: cfg.Events.JetStream,
	}, logging.Component(g.Logger, "events"))
	if err != nil {
		// Events are best effort; a missing broker must not block builds.
		g.Logger.Warn("Event publishing disabled", logfields.Error(err))
	} else {
		rt.events = pub
	}

	if cfg.Metrics.Textfile != "" {
		rt.prom = metrics.NewPrometheusRecorder(prom.NewRegistry())
		rt.recorder = rt.prom
	}
	return rt, nil
}

// builder returns a site builder for opts, filling directories from config.
func (rt *runtime) builder(opts site.Options) *site.Builder {
	if opts.DataDir == "" {
		opts.DataDir = rt.cfg.Data.CharacterDir()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = rt.cfg.Output.Dir
	}
	if opts.TemplatesDir == "" {
		opts.TemplatesDir = rt.cfg.Templates.Dir
	}
	opts.Markdown = rt.cfg.Render.Markdown
	opts.VerifyLinks = rt.cfg.Render.VerifyLinks
	return site.New(opts, site.Deps{
		Logger:   rt.global.Logger,
		Counter:  rt.global.Counter,
		History:  rt.history,
		Events:   rt.events,
		Recorder: rt.recorder,
	})
}

// syncer returns nil when no data repository is configured.
func (rt *runtime) syncer() *source.Syncer {
	repo := rt.cfg.Data.Repository
	if repo == nil {
		return nil
	}
	return source.New(*repo, rt.cfg.Data.Dir, logging.Component(rt.global.Logger, "source"), rt.recorder)
}

// sync runs s with the repository's retry policy.
func (rt *runtime) sync(ctx context.Context, s *source.Syncer) (source.Result, error) {
	var res source.Result
	policy := retry.FromConfig(rt.cfg.Data.Repository.Retry)
	err := retry.Do(ctx, policy, logging.Component(rt.global.Logger, "source"), "sync", func() error {
		var err error
		res, err = s.Sync(ctx)
		return err
	})
	return res, err
}

// syncAndBuild pulls the data repository (if any) and runs a build.
// With onlyIfChanged, the build is skipped when the pull brought nothing new.
func (rt *runtime) syncAndBuild(ctx context.Context, trigger string, onlyIfChanged bool) error {
	if s := rt.syncer(); s != nil {
		res, err := rt.sync(ctx, s)
		if err != nil {
			return err
		}
		if onlyIfChanged && !res.Changed {
			rt.global.Logger.Info("Data unchanged; skipping build", slog.String("commit", res.ShortCommit()))
			return nil
		}
	}
	_, err := rt.builder(site.Options{Trigger: trigger}).Build(ctx)
	rt.flushMetrics()
	return err
}

// flushMetrics writes the metrics textfile when configured.
func (rt *runtime) flushMetrics() {
	if rt.prom == nil {
		return
	}
	if err := metrics.WriteTextfile(rt.prom.Registry(), rt.cfg.Metrics.Textfile); err != nil {
		rt.global.Logger.Warn("Could not write metrics textfile", logfields.Error(err))
	}
}

func (rt *runtime) Close() {
	if err := rt.events.Close(); err != nil {
		rt.global.Logger.Warn("Could not close event publisher", logfields.Error(err))
	}
	if rt.history != nil {
		if err := rt.history.Close(); err != nil {
			rt.global.Logger.Warn("Could not close history database", logfields.Error(err))
		}
	}
}
