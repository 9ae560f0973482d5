package page

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/framedoc/internal/character"
	"git.home.luguber.info/inful/framedoc/internal/logfields"
	"git.home.luguber.info/inful/framedoc/internal/strutil"
	"git.home.luguber.info/inful/framedoc/internal/templates"
)

// section renders one section and records its contents entries.
func (p *pass) section(s character.Section) string {
	if len(s.Items) == 0 {
		return ""
	}
	title := s.Title()
	id := strutil.SafeID(title)
	p.toc.Add(id, title, true)

	var b strings.Builder
	b.WriteString("<div class=section>")
	fmt.Fprintf(&b, "<h2 id=%s><a href=#%s>%s</a></h2>", id, id, title)
	for _, it := range s.Items {
		b.WriteString(p.item(s, it))
	}
	b.WriteString("</div>")
	return b.String()
}

func (p *pass) item(s character.Section, it character.Item) string {
	switch item := it.(type) {
	case character.Summary:
		p.log.Debug("Generating section item", logfields.Section(s.Key))
		return `<span class=section-text>` + p.describe(item.Description) + `</span>`
	case character.Text:
		p.log.Debug("Generating section item", logfields.Section(s.Key), logfields.Item(item.Name))
		id := strutil.SafeID(item.Anchor())
		p.toc.Add(id, item.Name, false)
		return fmt.Sprintf("<a href=#%s><h3 id=%s class=move-name>%s</h3></a>\n", id, id, item.Name) +
			`<span class=section-text>` + p.describe(item.Description) + `</span>`
	case *character.Move:
		p.log.Debug("Generating section item", logfields.Section(s.Key), logfields.Item(item.PlainName()))
		return p.move(item)
	case character.Unknown:
		p.log.Error("Unknown section type", logfields.Section(s.Key), "type", item.Type, logfields.Item(item.Name))
		return ""
	default:
		p.log.Error("Unknown section item", logfields.Section(s.Key), "type", fmt.Sprintf("%T", it))
		return ""
	}
}

func (p *pass) move(m *character.Move) string {
	inputString, err := m.InputString(false)
	if err != nil {
		p.log.Error("Inputs and Buttons are not paired", logfields.Item(m.Name), logfields.Error(err))
	}
	rawInput, _ := m.InputString(true)

	name := m.Name
	if name == "" {
		name = inputString
	}
	if name == "" {
		name = rawInput
	}
	rawName := m.Name
	if rawName == "" {
		rawName = rawInput
	}
	anchor := m.Anchor()
	id := strutil.SafeID(anchor)
	p.toc.Add(id, rawName, false)

	condition := ""
	if m.Condition != "" {
		condition = p.resolve(m.Condition)
	}

	return templates.Substitute(p.r.Templates.Move,
		templates.T("NAME", name),
		templates.T("ID", id),
		templates.T("EXTRA", m.Extras()),
		templates.T("INPUT", inputString),
		templates.T("BUTTON", strings.ToLower(m.FirstButton())),
		templates.T("CONDITION", condition),
		templates.T("IMAGE", p.images(m.Images, anchor, m.ImageNotes, false)),
		templates.T("HITBOX", p.images(m.Hitboxes, anchor, m.HitboxNotes, true)),
		templates.T("FRAMEDATA", p.frameData(m)),
		templates.T("PROPERTIES", p.properties(m)),
		templates.T("DESCRIPTION", p.describe(m.Description)),
	)
}
