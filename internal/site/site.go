// Package site runs a full build: load the roster, render every page, skip
// pages whose content did not change, stamp and write the rest, then verify
// links and record the outcome.
package site

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/framedoc/internal/changes"
	"git.home.luguber.info/inful/framedoc/internal/character"
	"git.home.luguber.info/inful/framedoc/internal/events"
	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
	"git.home.luguber.info/inful/framedoc/internal/history"
	"git.home.luguber.info/inful/framedoc/internal/linkverify"
	"git.home.luguber.info/inful/framedoc/internal/logfields"
	"git.home.luguber.info/inful/framedoc/internal/logging"
	"git.home.luguber.info/inful/framedoc/internal/markdown"
	"git.home.luguber.info/inful/framedoc/internal/metrics"
	"git.home.luguber.info/inful/framedoc/internal/page"
	"git.home.luguber.info/inful/framedoc/internal/templates"
)

// IndexPage is the site index, relative to the output directory.
const IndexPage = "index.html"

// Stage names used for metrics and logs.
const (
	StageLoad   = "load"
	StageRender = "render"
	StageWrite  = "write"
	StageVerify = "verify"
)

// Options select what a build reads and writes.
type Options struct {
	DataDir      string
	TemplatesDir string
	OutputDir    string
	Markdown     bool
	VerifyLinks  bool
	// Force writes every page even when its content did not change.
	Force bool
	// DryRun renders and compares without writing.
	DryRun bool
	// Trigger names what started the build (build, watch, daemon, sync).
	Trigger string
}

// Deps are the optional collaborators of a Builder. Nil fields fall back to
// no-op implementations.
type Deps struct {
	Logger   *slog.Logger
	Counter  *logging.Counter
	History  *history.Store
	Events   events.Publisher
	Recorder metrics.Recorder
	Now      func() time.Time
}

// Builder runs builds.
type Builder struct {
	opts Options
	deps Deps
	log  *slog.Logger
}

// New creates a Builder.
func New(opts Options, deps Deps) *Builder {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Events == nil {
		deps.Events = events.Noop{}
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.NoopRecorder{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if opts.Trigger == "" {
		opts.Trigger = "build"
	}
	return &Builder{opts: opts, deps: deps, log: logging.Component(deps.Logger, "site")}
}

// PageResult is the outcome for one output page.
type PageResult struct {
	// Path is relative to the output directory, slash separated.
	Path      string
	Character string
	Status    history.PageStatus
	Bytes     int

	// Fingerprint hashes the stamped page; set when the page was (or would be) written.
	Fingerprint string
}

// Report summarizes a build.
type Report struct {
	BuildID     string
	Characters  int
	Pages       []PageResult
	BrokenLinks []linkverify.Broken
	Warnings    int
	Errors      int
	Duration    time.Duration
}

// Count returns the number of pages with status s.
func (r *Report) Count(s history.PageStatus) int {
	n := 0
	for _, p := range r.Pages {
		if p.Status == s {
			n++
		}
	}
	return n
}

// Outcome classifies the build for metrics.
func (r *Report) Outcome() metrics.BuildOutcomeLabel {
	if r.Errors > 0 || r.Warnings > 0 || len(r.BrokenLinks) > 0 {
		return metrics.BuildOutcomeWarning
	}
	return metrics.BuildOutcomeSuccess
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// rendered is a page waiting for change detection.
type rendered struct {
	rel       string
	character string
	html      string
}

// Build runs one full build. Render problems are logged and counted; only
// failures to load data or write output abort the build.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := b.deps.Now()
	if b.deps.Counter != nil {
		b.deps.Counter.Reset()
	}
	report := &Report{}

	var record *history.Build
	if b.deps.History != nil {
		rec, err := b.deps.History.Begin(ctx, b.opts.Trigger, start)
		if err != nil {
			b.log.Warn("Could not record build start", logfields.Error(err))
		} else {
			record = rec
			report.BuildID = rec.ID
		}
	}
	log := b.log
	if report.BuildID != "" {
		log = log.With(logfields.BuildID(report.BuildID))
	}

	err := b.run(ctx, log, report)

	report.Duration = b.deps.Now().Sub(start)
	if b.deps.Counter != nil {
		report.Warnings = b.deps.Counter.Warnings()
		report.Errors = b.deps.Counter.Errors()
	}
	b.finish(ctx, log, report, record, err)
	return report, err
}

func (b *Builder) run(ctx context.Context, log *slog.Logger, report *Report) error {
	var roster *character.Roster
	err := b.stage(StageLoad, func() error {
		var err error
		roster, err = character.LoadDir(b.opts.DataDir, logging.Component(b.deps.Logger, "loader"))
		return err
	})
	if err != nil {
		return err
	}
	report.Characters = roster.Len()
	if roster.Len() == 0 {
		log.Warn("No characters loaded", logfields.Path(b.opts.DataDir))
	}

	var pages []rendered
	err = b.stage(StageRender, func() error {
		var err error
		pages, err = b.render(roster)
		return err
	})
	if err != nil {
		return err
	}

	err = b.stage(StageWrite, func() error {
		for _, p := range pages {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := b.write(p)
			if err != nil {
				return err
			}
			report.Pages = append(report.Pages, res)
			b.afterWrite(ctx, log, report.BuildID, res)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if b.opts.VerifyLinks && !b.opts.DryRun {
		_ = b.stage(StageVerify, func() error {
			rels := make([]string, 0, len(report.Pages))
			for _, p := range report.Pages {
				rels = append(rels, p.Path)
			}
			report.BrokenLinks = linkverify.NewVerifier(b.opts.OutputDir, logging.Component(b.deps.Logger, "linkverify")).Verify(rels)
			for _, broken := range report.BrokenLinks {
				e := events.BrokenLinkEvent{
					BuildID: report.BuildID, Page: broken.Page, URL: broken.URL,
					Tag: broken.Tag, Reason: broken.Reason, Timestamp: b.deps.Now(),
				}
				if err := b.deps.Events.PublishBrokenLink(ctx, e); err != nil {
					log.Warn("Could not publish broken link event", logfields.Error(err))
				}
			}
			return nil
		})
	}
	return nil
}

// stage times fn and records its result.
func (b *Builder) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	b.deps.Recorder.ObserveStageDuration(name, time.Since(start))
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case isCanceled(err):
		result = metrics.ResultCanceled
	default:
		result = metrics.ResultFatal
	}
	b.deps.Recorder.IncStageResult(name, result)
	return err
}

func (b *Builder) render(roster *character.Roster) ([]rendered, error) {
	set, err := templates.Load(b.opts.TemplatesDir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "failed to load templates").
			WithContext("path", b.opts.TemplatesDir).Build()
	}
	r := page.New(set, b.deps.Logger)
	r.OutputDir = b.opts.OutputDir
	if b.opts.Markdown {
		r.Markdown = markdown.New()
	}

	pages := []rendered{{rel: IndexPage, html: r.Index(roster)}}
	for _, c := range roster.All() {
		pages = append(pages, rendered{
			rel:       path.Join(page.CharacterDir, c.Slug()+".html"),
			character: c.Name,
			html:      r.Character(c, roster),
		})
	}
	return pages, nil
}

// write stamps and writes p unless its content matches the page on disk.
func (b *Builder) write(p rendered) (PageResult, error) {
	res := PageResult{Path: p.rel, Character: p.character}
	full := filepath.Join(b.opts.OutputDir, filepath.FromSlash(p.rel))

	detector := changes.Detector{Logger: logging.Component(b.deps.Logger, "changes")}
	if !b.opts.Force && !detector.HasChanged(full, p.html) {
		res.Status = history.PageUnchanged
		b.log.Debug("Page unchanged", logfields.Path(p.rel))
		return res, nil
	}

	stamped := changes.Stamp(p.html, b.deps.Now())
	res.Bytes = len(stamped)
	res.Fingerprint = Fingerprint(p.rel, stamped)
	if b.opts.DryRun {
		res.Status = history.PageSkipped
		b.log.Info("Would write page", logfields.Path(p.rel))
		return res, nil
	}
	if _, err := WritePage(b.opts.OutputDir, p.rel, stamped); err != nil {
		return res, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write page").
			WithContext("path", p.rel).Build()
	}
	res.Status = history.PageWritten
	b.log.Info("Wrote page", logfields.Path(p.rel))
	return res, nil
}

func (b *Builder) afterWrite(ctx context.Context, log *slog.Logger, buildID string, res PageResult) {
	b.deps.Recorder.IncPage(string(res.Status))
	if b.deps.History != nil && buildID != "" {
		err := b.deps.History.RecordPage(ctx, history.Page{
			BuildID: buildID, Path: res.Path, Character: res.Character, Status: res.Status, Bytes: res.Bytes,
			Fingerprint: res.Fingerprint,
		})
		if err != nil {
			log.Warn("Could not record page", logfields.Path(res.Path), logfields.Error(err))
		}
	}
	if res.Status != history.PageWritten {
		return
	}
	e := events.PageEvent{
		BuildID:     buildID,
		Path:        res.Path,
		Character:   res.Character,
		Bytes:       res.Bytes,
		Fingerprint: res.Fingerprint,
		Timestamp:   b.deps.Now(),
	}
	if err := b.deps.Events.PublishPage(ctx, e); err != nil {
		log.Warn("Could not publish page event", logfields.Path(res.Path), logfields.Error(err))
	}
}

func (b *Builder) finish(ctx context.Context, log *slog.Logger, report *Report, record *history.Build, err error) {
	outcome := report.Outcome()
	status := history.StatusSucceeded
	if err != nil {
		outcome = metrics.BuildOutcomeFailed
		if isCanceled(err) {
			outcome = metrics.BuildOutcomeCanceled
		}
		status = history.StatusFailed
	}

	rec := b.deps.Recorder
	rec.ObserveBuildDuration(report.Duration)
	rec.IncBuildOutcome(outcome)
	rec.SetCharacters(report.Characters)
	rec.AddDiagnostics(report.Warnings, report.Errors)
	rec.AddBrokenLinks(len(report.BrokenLinks))

	if record != nil {
		record.FinishedAt = record.StartedAt.Add(report.Duration)
		record.Status = status
		record.Characters = report.Characters
		record.Written = report.Count(history.PageWritten)
		record.Unchanged = report.Count(history.PageUnchanged)
		record.Warnings = report.Warnings
		record.Errors = report.Errors
		record.BrokenLinks = len(report.BrokenLinks)
		if err != nil {
			record.Message = err.Error()
		}
		if herr := b.deps.History.Finish(ctx, record); herr != nil {
			log.Warn("Could not record build result", logfields.Error(herr))
		}
	}

	if perr := b.deps.Events.PublishBuild(ctx, events.BuildEvent{
		BuildID:     report.BuildID,
		Status:      string(status),
		Written:     report.Count(history.PageWritten),
		Unchanged:   report.Count(history.PageUnchanged),
		Warnings:    report.Warnings,
		Errors:      report.Errors,
		BrokenLinks: len(report.BrokenLinks),
		DurationMS:  report.Duration.Milliseconds(),
		Timestamp:   b.deps.Now(),
	}); perr != nil {
		log.Warn("Could not publish build event", logfields.Error(perr))
	}

	if err != nil {
		log.Error("Build failed", logfields.Error(err), logfields.DurationMS(float64(report.Duration.Milliseconds())))
		return
	}
	log.Info("Build complete",
		slog.Int("characters", report.Characters),
		slog.Int("written", report.Count(history.PageWritten)),
		slog.Int("unchanged", report.Count(history.PageUnchanged)),
		slog.Int("warnings", report.Warnings),
		slog.Int("errors", report.Errors),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
}
