package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/framedoc/cmd/framedoc/commands"
	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
	"git.home.luguber.info/inful/framedoc/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{}
	ctx := kong.Parse(&cli,
		kong.Name("framedoc"),
		kong.Description("Generate cross-linked frame data pages from character TOML files."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	if err := ctx.Run(global, &cli); err != nil {
		adapter := ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
		os.Exit(adapter.Report(os.Stderr, err))
	}
}
