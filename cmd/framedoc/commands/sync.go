package commands

import (
	"context"
	"fmt"

	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
)

// SyncCmd implements the 'sync' command.
type SyncCmd struct {
	NoBuild bool `name:"no-build" help:"Only update the data checkout"`
	Always  bool `help:"Rebuild even when the repository did not change"`
}

func (s *SyncCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, g)
	if err != nil {
		return err
	}
	defer rt.Close()

	syncer := rt.syncer()
	if syncer == nil {
		return ferrors.ConfigError("no data.repository configured").Build()
	}
	ctx := context.Background()
	if s.NoBuild {
		res, err := rt.sync(ctx, syncer)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(g.Stdout, "%s at %s\n", res.Path, res.ShortCommit())
		return nil
	}
	return rt.syncAndBuild(ctx, "sync", !s.Always)
}
