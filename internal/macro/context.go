package macro

import (
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/framedoc/internal/character"
)

// Context is the read-only bundle a macro needs to resolve references. It is
// built per render pass and passed down, never stored.
type Context struct {
	// Character owns the text being resolved. It may be nil for site-level text.
	Character *character.Character
	// Roster resolves cross-character references.
	Roster *character.Roster
	Logger *slog.Logger
	// Name is the display name used in log records.
	Name string
	// OutputDir is the site root used for asset existence checks. Empty
	// disables the checks.
	OutputDir string
	// PageDir is the directory of the page being rendered, relative to OutputDir.
	PageDir string
}

func (c *Context) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	if c.Name != "" {
		return c.Logger.With("character", c.Name)
	}
	return c.Logger
}

func (c *Context) character() *character.Character {
	if c == nil {
		return nil
	}
	return c.Character
}

func (c *Context) slug() string {
	if ch := c.character(); ch != nil {
		return ch.Slug()
	}
	return ""
}

// exists reports whether rel (relative to the site root) exists. Checks are
// skipped, and report true, when no output directory is configured.
func (c *Context) exists(rel string) bool {
	if c == nil || c.OutputDir == "" {
		return true
	}
	_, err := os.Stat(filepath.Join(c.OutputDir, filepath.FromSlash(rel)))
	return err == nil
}
