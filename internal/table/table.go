// Package table renders uniform records as HTML tables.
package table

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/framedoc/internal/foundation/normalization"
)

// Orientation selects the table layout.
type Orientation string

const (
	// Horizontal renders one header row and one body row per record.
	Horizontal Orientation = "horizontal"
	// Vertical renders one header/value row per column, for info boxes.
	Vertical Orientation = "vertical"
)

// ListSeparator joins the elements of a list cell.
const ListSeparator = ",<br>"

var orientations = normalization.New("orientation", map[string]Orientation{
	"horizontal": Horizontal,
	"vertical":   Vertical,
}, Horizontal)

// ParseOrientation converts a loosely written orientation name.
func ParseOrientation(raw string) (Orientation, error) {
	return orientations.Parse(raw)
}

// Value is a cell value: a scalar or a list of strings.
type Value struct {
	items  []string
	isList bool
}

// Text makes a scalar value.
func Text(s string) Value { return Value{items: []string{s}} }

// List makes a list value.
func List(items ...string) Value { return Value{items: items, isList: true} }

// IsList reports whether v is a list.
func (v Value) IsList() bool { return v.isList }

// Items returns the list elements, or the scalar as one element.
func (v Value) Items() []string { return v.items }

// Cell is one column of a record.
type Cell struct {
	Column string
	Value  Value
}

// Record is an ordered set of cells.
type Record []Cell

// Get returns the value stored under column.
func (r Record) Get(column string) (Value, bool) {
	for _, c := range r {
		if c.Column == column {
			return c.Value, true
		}
	}
	return Value{}, false
}

// Columns returns the column names in order.
func (r Record) Columns() []string {
	cols := make([]string, 0, len(r))
	for _, c := range r {
		cols = append(cols, c.Column)
	}
	return cols
}

// Renderer turns records into HTML. Resolve is applied to header text and
// every cell value; nil leaves text as is.
type Renderer struct {
	Resolve func(string) string
	Logger  *slog.Logger
}

func (r Renderer) resolve(s string) string {
	if r.Resolve == nil {
		return s
	}
	return r.Resolve(s)
}

func (r Renderer) cell(v Value) string {
	parts := make([]string, 0, len(v.items))
	for _, item := range v.items {
		parts = append(parts, r.resolve(item))
	}
	return strings.Join(parts, ListSeparator)
}

// Render renders rows with the column set of the first row. Empty input
// renders nothing. An unknown orientation is logged and renders nothing.
func (r Renderer) Render(rows []Record, orientation Orientation) string {
	if len(rows) == 0 {
		return ""
	}
	if orientation == "" {
		orientation = Horizontal
	}
	columns := rows[0].Columns()

	var b strings.Builder
	switch orientation {
	case Horizontal:
		b.WriteString(`<table orientation="horizontal">` + "\n<thead>\n<tr>\n")
		for i, col := range columns {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("<th>" + r.resolve(col) + "</th>")
		}
		b.WriteString("\n</tr>\n</thead><tbody>\n")
		for _, row := range rows {
			b.WriteString("<tr>\n")
			for i, col := range columns {
				if i > 0 {
					b.WriteString("\n")
				}
				v, _ := row.Get(col)
				b.WriteString("<td>" + r.cell(v) + "</td>")
			}
			b.WriteString("\n</tr>\n")
		}
		b.WriteString("</tbody>\n</table>")
	case Vertical:
		b.WriteString(`<table orientation="vertical">` + "\n<tbody>\n")
		for i, row := range rows {
			if i > 0 {
				b.WriteString("\n")
			}
			for j, col := range columns {
				if j > 0 {
					b.WriteString("\n")
				}
				v, _ := row.Get(col)
				b.WriteString("<tr><th>" + col + "</th><td>" + r.cell(v) + "</td></tr>")
			}
		}
		b.WriteString("\n</tbody>\n</table>")
	default:
		logger := r.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("Unknown table orientation", "orientation", string(orientation))
		return ""
	}
	return b.String()
}
