package commands

import (
	"fmt"

	"git.home.luguber.info/inful/framedoc/internal/config"
	"git.home.luguber.info/inful/framedoc/internal/templates"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force     bool   `help:"Overwrite existing configuration file"`
	Templates string `name:"templates" placeholder:"DIR" help:"Also export the built-in templates to DIR for customization"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	_, _ = fmt.Fprintf(g.Stdout, "Writing configuration to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		_, _ = fmt.Fprintln(g.Stdout, "Initialization failed")
		return err
	}

	if i.Templates != "" {
		written, err := templates.Export(i.Templates, i.Force)
		if err != nil {
			return fmt.Errorf("export templates: %w", err)
		}
		for _, path := range written {
			_, _ = fmt.Fprintf(g.Stdout, "Exported %s\n", path)
		}
	}
	_, _ = fmt.Fprintln(g.Stdout, "Initialized successfully")
	return nil
}
