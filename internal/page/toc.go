package page

import (
	"fmt"
	"strings"
)

// OverviewID is the anchor of the fixed first contents entry.
const OverviewID = "Overview"

// Entry is one table of contents line.
type Entry struct {
	ID     string
	Label  string
	Header bool
}

// TOC accumulates contents entries during one character render.
type TOC struct {
	entries []Entry
}

// Add appends an entry. id must already be sanitized.
func (t *TOC) Add(id, label string, header bool) {
	t.entries = append(t.entries, Entry{ID: id, Label: label, Header: header})
}

// Entries returns the entries in insertion order.
func (t *TOC) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// HTML renders the list items, starting with the Overview link.
func (t *TOC) HTML() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<li><a href="#%s">%s</a></li>`, OverviewID, OverviewID)
	for _, e := range t.entries {
		if e.Header {
			fmt.Fprintf(&b, "<li class=header><a href=\"#%s\">%s</a></li>\n", e.ID, e.Label)
		} else {
			fmt.Fprintf(&b, "<li><a href=\"#%s\">%s</a></li>\n", e.ID, e.Label)
		}
	}
	return b.String()
}
