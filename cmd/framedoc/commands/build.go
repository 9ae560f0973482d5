package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/framedoc/internal/history"
	"git.home.luguber.info/inful/framedoc/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory (overrides output.dir)"`
	Force  bool   `short:"f" help:"Rewrite every page even when its content is unchanged"`
	DryRun bool   `name:"dry-run" help:"Render and compare pages without writing them"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, g)
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.builder(site.Options{
		OutputDir: b.Output,
		Force:     b.Force,
		DryRun:    b.DryRun,
		Trigger:   "build",
	}).Build(context.Background())
	rt.flushMetrics()
	if err != nil {
		return err
	}

	verb := "written"
	status := history.PageWritten
	if b.DryRun {
		verb, status = "would be written", history.PageSkipped
	}
	_, _ = fmt.Fprintf(g.Stdout, "%d characters, %d pages %s, %d unchanged, %d warnings, %d broken links\n",
		report.Characters, report.Count(status), verb, report.Count(history.PageUnchanged),
		report.Warnings, len(report.BrokenLinks))
	return nil
}
