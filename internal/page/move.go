package page

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/framedoc/internal/character"
	"git.home.luguber.info/inful/framedoc/internal/logfields"
	"git.home.luguber.info/inful/framedoc/internal/strutil"
	"git.home.luguber.info/inful/framedoc/internal/table"
)

// images renders a sprite or hitbox gallery. Missing files are logged and
// still linked.
func (p *pass) images(files []string, name string, notes []string, hitbox bool) string {
	if len(files) == 0 {
		return ""
	}
	slug := p.chara.Slug()
	kind := "Sprite"
	container := "image-container"
	if hitbox {
		kind = "Hitbox"
		container = "hitbox-container"
	}

	var b strings.Builder
	for i, file := range files {
		if p.r.OutputDir != "" {
			if _, err := os.Stat(filepath.Join(p.r.OutputDir, "images", slug, filepath.FromSlash(file))); err != nil {
				p.log.Warn("Could not find requested image", logfields.Path(file))
			}
		}
		number := ""
		if i > 0 {
			number = fmt.Sprint(i + 1)
		}
		fmt.Fprintf(&b, "<img src=\"../images/%s/%s\" alt=\"%s %s %s\" title=\"%s\">\n", slug, file, name, kind, number, file)
		if i < len(notes) && notes[i] != "" {
			b.WriteString("<span class=image-note>" + p.resolve(notes[i]) + "</span>")
		}
	}

	out := "<div class=" + container + ">" + b.String() + "</div>"
	if hitbox {
		id := strutil.SafeID(name)
		out += fmt.Sprintf(`<div class=hitbox-toggle>
            <input type=checkbox id="%s-hitbox-toggle" class=hitbox-checkbox hidden>
            <label for="%s-hitbox-toggle" class=hitbox-btn>Hitbox</label>
          </div>`, id, id)
	}
	return out
}

// column is a named cell extractor.
type column[T any] struct {
	key string
	get func(T) table.Value
}

func scalar[T any](key string, get func(T) character.Scalar) column[T] {
	return column[T]{key, func(v T) table.Value { return table.Text(get(v).String()) }}
}

func list[T any](key string, get func(T) character.Sequence) column[T] {
	return column[T]{key, func(v T) table.Value { return table.List(get(v).Values...) }}
}

func optional[T any](key string, get func(T) *character.Scalar) column[T] {
	return column[T]{key, func(v T) table.Value {
		if s := get(v); s != nil {
			return table.Text(s.String())
		}
		return table.Text("")
	}}
}

// records builds uniform rows. Missing values render as empty cells.
func records[T any](rows []T, columns []column[T]) []table.Record {
	out := make([]table.Record, 0, len(rows))
	for _, row := range rows {
		rec := make(table.Record, 0, len(columns))
		for _, c := range columns {
			rec = append(rec, table.Cell{Column: strutil.Humanize(c.key), Value: c.get(row)})
		}
		out = append(out, rec)
	}
	return out
}

// frameData renders the frame data table. The Version column is shown iff
// the first row declares a version; rows that disagree are logged.
func (p *pass) frameData(m *character.Move) string {
	if len(m.Data) == 0 {
		return ""
	}
	versioned := m.Data[0].Version != nil
	for i, row := range m.Data[1:] {
		if (row.Version != nil) != versioned {
			p.log.Warn("Frame data rows disagree on Version", logfields.Item(m.PlainName()), "row", i+2)
			break
		}
	}

	var cols []column[character.FrameData]
	if versioned {
		cols = append(cols, optional("Version", func(f character.FrameData) *character.Scalar { return f.Version }))
	}
	cols = append(cols,
		scalar("Damage", func(f character.FrameData) character.Scalar { return f.Damage }),
		scalar("Guard", func(f character.FrameData) character.Scalar { return f.Guard }),
		scalar("Startup", func(f character.FrameData) character.Scalar { return f.Startup }),
		scalar("Active", func(f character.FrameData) character.Scalar { return f.Active }),
		scalar("Recovery", func(f character.FrameData) character.Scalar { return f.Recovery }),
		scalar("OnBlock", func(f character.FrameData) character.Scalar { return f.OnBlock }),
		list("Invuln", func(f character.FrameData) character.Sequence { return f.Invuln }),
	)
	return p.tables.Render(records(m.Data, cols), table.Horizontal)
}

// properties renders the move properties table. Version and ProjectileLevel
// are shown iff the first row declares them.
func (p *pass) properties(m *character.Move) string {
	if len(m.Properties) == 0 {
		return ""
	}
	first := m.Properties[0]

	var cols []column[character.MoveProperties]
	if first.Version != nil {
		cols = append(cols, optional("Version", func(mp character.MoveProperties) *character.Scalar { return mp.Version }))
	}
	cols = append(cols, list("Attributes", func(mp character.MoveProperties) character.Sequence { return mp.Attributes }))
	if first.ProjectileLevel != nil {
		cols = append(cols, optional("ProjectileLevel", func(mp character.MoveProperties) *character.Scalar { return mp.ProjectileLevel }))
	}
	cols = append(cols,
		list("Properties", func(mp character.MoveProperties) character.Sequence { return mp.Properties }),
		scalar("Proration", func(mp character.MoveProperties) character.Scalar { return mp.Proration }),
		scalar("CounterType", func(mp character.MoveProperties) character.Scalar { return mp.CounterType }),
		scalar("ChipRatio", func(mp character.MoveProperties) character.Scalar { return mp.ChipRatio }),
		scalar("OnHit", func(mp character.MoveProperties) character.Scalar { return mp.OnHit }),
	)
	return p.tables.Render(records(m.Properties, cols), table.Horizontal)
}
