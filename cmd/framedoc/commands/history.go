package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
	"git.home.luguber.info/inful/framedoc/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Number of builds to show" default:"10"`
	Pages string `name:"pages" placeholder:"BUILD_ID" help:"List the pages of one build"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return ferrors.ConfigError("build history is disabled (set history.path)").Build()
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	if h.Pages != "" {
		pages, err := store.Pages(ctx, h.Pages)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(tw, "PATH\tCHARACTER\tSTATUS\tBYTES\tFINGERPRINT")
		for _, p := range pages {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.Path, p.Character, p.Status, p.Bytes, p.Fingerprint)
		}
		return nil
	}

	builds, err := store.Recent(ctx, h.Limit)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(tw, "ID\tSTARTED\tTRIGGER\tSTATUS\tWRITTEN\tUNCHANGED\tWARNINGS\tBROKEN\tDURATION")
	for _, b := range builds {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			b.ID, b.StartedAt.Format(time.DateTime), b.Trigger, b.Status,
			b.Written, b.Unchanged, b.Warnings, b.BrokenLinks, b.Duration().Round(time.Millisecond))
	}
	return nil
}
