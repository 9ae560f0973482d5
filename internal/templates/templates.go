// Package templates loads the HTML page templates and fills their %TOKEN%
// placeholders.
//
// Built-in templates are embedded in the binary. A template directory with the
// same layout (index.html, character/page.html, character/move.html,
// character/selector.html) overrides them file by file.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed defaults
var defaults embed.FS

// Template file names relative to the template directory.
const (
	PageFile     = "character/page.html"
	MoveFile     = "character/move.html"
	SelectorFile = "character/selector.html"
	IndexFile    = "index.html"
)

// Set is the collection of templates used for one build.
type Set struct {
	Page     string
	Move     string
	Selector string
	Index    string
}

// Default returns the embedded templates.
func Default() *Set {
	s, err := Load("")
	if err != nil {
		panic(err) // embedded files are always present
	}
	return s
}

// Load reads templates from dir, falling back to the embedded defaults for
// files dir does not provide. An empty dir uses only the defaults.
func Load(dir string) (*Set, error) {
	set := &Set{}
	for name, dst := range map[string]*string{
		PageFile:     &set.Page,
		MoveFile:     &set.Move,
		SelectorFile: &set.Selector,
		IndexFile:    &set.Index,
	} {
		body, err := read(dir, name)
		if err != nil {
			return nil, err
		}
		*dst = body
	}
	return set, nil
}

func read(dir, name string) (string, error) {
	if dir != "" {
		// #nosec G304 -- name is one of the fixed template files.
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		switch {
		case err == nil:
			return string(data), nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("read template %s: %w", name, err)
		}
	}
	data, err := defaults.ReadFile("defaults/" + name)
	if err != nil {
		return "", fmt.Errorf("read default template %s: %w", name, err)
	}
	return string(data), nil
}

// Token is one %NAME% placeholder and its replacement.
type Token struct {
	Name  string
	Value string
}

// T is shorthand for a Token.
func T(name, value string) Token { return Token{Name: name, Value: value} }

// Placeholder returns the literal text of a token name.
func Placeholder(name string) string { return "%" + name + "%" }

// Substitute replaces every placeholder of tokens in tpl in one pass.
// Replacement values are not scanned again, so a description containing
// "%NAME%" is left intact. Placeholders not listed are kept.
func Substitute(tpl string, tokens ...Token) string {
	pairs := make([]string, 0, len(tokens)*2)
	for _, t := range tokens {
		pairs = append(pairs, Placeholder(t.Name), t.Value)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// Export writes the embedded templates to dir, for users who want to
// customise them. Existing files are kept unless force is set.
func Export(dir string, force bool) ([]string, error) {
	var written []string
	err := fs.WalkDir(defaults, "defaults", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel := strings.TrimPrefix(p, "defaults/")
		dst := filepath.Join(dir, filepath.FromSlash(rel))
		if _, statErr := os.Stat(dst); statErr == nil && !force {
			return nil
		}
		data, err := defaults.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0o600); err != nil {
			return err
		}
		written = append(written, dst)
		return nil
	})
	return written, err
}
