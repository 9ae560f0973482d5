// Package page assembles character and index pages from templates, sections
// and tables. Rendering never fails: bad data degrades the affected fragment
// and is logged.
package page

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/framedoc/internal/character"
	"git.home.luguber.info/inful/framedoc/internal/logfields"
	"git.home.luguber.info/inful/framedoc/internal/logging"
	"git.home.luguber.info/inful/framedoc/internal/macro"
	"git.home.luguber.info/inful/framedoc/internal/markdown"
	"git.home.luguber.info/inful/framedoc/internal/table"
	"git.home.luguber.info/inful/framedoc/internal/templates"
)

// CharacterDir is the site directory holding character pages.
const CharacterDir = "characters"

// Placeholders used by the overview info table.
const (
	missingValue = "<em button=x>-</em>"
	noReversals  = "<em button=x>None</em>"
)

// Renderer renders pages. The zero value is not usable; see New.
type Renderer struct {
	Templates *templates.Set
	Macros    *macro.Registry
	// Markdown renders descriptions when non-nil.
	Markdown *markdown.Renderer
	Logger   *slog.Logger
	// OutputDir is the site root, used for asset existence checks.
	OutputDir string
}

// New returns a renderer with the builtin macros.
func New(set *templates.Set, logger *slog.Logger) *Renderer {
	if set == nil {
		set = templates.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{Templates: set, Macros: macro.Builtins(), Logger: logger}
}

// pass is the state of one character render. Its TOC is owned by the pass.
type pass struct {
	r      *Renderer
	chara  *character.Character
	ctx    *macro.Context
	toc    *TOC
	log    *slog.Logger
	tables table.Renderer
}

func (r *Renderer) newPass(c *character.Character, roster *character.Roster) *pass {
	log := logging.Component(r.Logger, "page").With(logfields.Character(c.Name))
	p := &pass{
		r:     r,
		chara: c,
		toc:   &TOC{},
		log:   log,
		ctx: &macro.Context{
			Character: c,
			Roster:    roster,
			Logger:    logging.Component(r.Logger, "macro"),
			Name:      c.Name,
			OutputDir: r.OutputDir,
			PageDir:   CharacterDir,
		},
	}
	p.tables = table.Renderer{Resolve: p.resolve, Logger: log}
	return p
}

// resolve expands macros.
func (p *pass) resolve(text string) string {
	return p.r.Macros.Resolve(text, p.ctx)
}

// describe expands macros and, when enabled, renders Markdown.
func (p *pass) describe(text string) string {
	out := p.resolve(text)
	if p.r.Markdown != nil {
		out = p.r.Markdown.Render(out)
	}
	return out
}

// Character renders the page of c without the footer timestamp.
func (r *Renderer) Character(c *character.Character, roster *character.Roster) string {
	p := r.newPass(c, roster)
	p.log.Info("Generating character page")

	var body strings.Builder
	for _, s := range c.Sections {
		body.WriteString(p.section(s))
	}

	slug := c.Slug()
	return templates.Substitute(r.Templates.Page,
		templates.T("NAME", c.Name),
		templates.T("DESCRIPTION", p.describe(c.Description)),
		templates.T("PORTRAITPATH", "../images/"+slug+"/"+c.PortraitPath),
		templates.T("ICONPATH", "../images/"+slug+"/"+c.IconPath),
		templates.T("INFO", p.info()),
		templates.T("BODY", body.String()),
		templates.T("TABLE_OF_CONTENTS", p.toc.HTML()),
		templates.T("CHARALIST", CharacterNav(roster, c)),
	)
}

// TOC renders c and returns the table of contents entries it produced.
func (r *Renderer) TOC(c *character.Character, roster *character.Roster) []Entry {
	p := r.newPass(c, roster)
	for _, s := range c.Sections {
		p.section(s)
	}
	return p.toc.Entries()
}

func (p *pass) info() string {
	c := p.chara
	text := func(v, fallback string) table.Value {
		if v == "" {
			return table.Text(fallback)
		}
		return table.Text(v)
	}
	many := func(s character.Sequence, fallback string) table.Value {
		if !s.IsSet() {
			return table.Text(fallback)
		}
		return table.List(s.Values...)
	}
	row := table.Record{
		{Column: "Type", Value: text(c.Type, missingValue)},
		{Column: "Health", Value: text(c.Health.String(), missingValue)},
		{Column: "Movement Speed", Value: text(c.MoveSpeed.String(), missingValue)},
		{Column: "Unique Movement", Value: many(c.UniqueMovement, missingValue)},
		{Column: "Stage", Value: text(c.Stage, missingValue)},
		{Column: "Reversals", Value: many(c.Reversals, noReversals)},
	}
	return p.tables.Render([]table.Record{row}, table.Vertical)
}

// CharacterNav renders the character list of a character page with active
// marked.
func CharacterNav(roster *character.Roster, active *character.Character) string {
	if roster == nil {
		return ""
	}
	items := make([]string, 0, roster.Len())
	for _, c := range roster.All() {
		if c == active {
			items = append(items, "<li class=active><a>"+c.Name+"</a></li>")
			continue
		}
		items = append(items, `<li><a href="./`+c.Slug()+`.html">`+c.Name+"</a></li>")
	}
	return strings.Join(items, "\n")
}

// IndexNav renders the character list of the index page.
func IndexNav(roster *character.Roster) string {
	if roster == nil {
		return ""
	}
	items := make([]string, 0, roster.Len())
	for _, c := range roster.All() {
		items = append(items, `<li><a href="`+CharacterDir+"/"+c.Slug()+`.html">`+c.Name+"</a></li>")
	}
	return strings.Join(items, "\n")
}

// Index renders the site index without the footer timestamp.
func (r *Renderer) Index(roster *character.Roster) string {
	r.Logger.Info("Generating main page")
	var cards strings.Builder
	if roster != nil {
		for _, c := range roster.All() {
			slug := c.Slug()
			cards.WriteString(templates.Substitute(r.Templates.Selector,
				templates.T("NAME", slug),
				templates.T("REALNAME", c.Name),
				templates.T("ICONPATH", "images/"+slug+"/"+c.IconPath),
				templates.T("TYPE", c.Type),
			))
		}
	}
	return templates.Substitute(r.Templates.Index,
		templates.T("CHARALIST", IndexNav(roster)),
		templates.T("CHARACTERS", cards.String()),
	)
}
