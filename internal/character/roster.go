package character

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/framedoc/internal/strutil"
)

// Roster is the ordered set of loaded characters. It is built once per build
// and passed to every component that needs cross-character lookups.
type Roster struct {
	chars []*Character
	index map[string]*Character
}

// NewRoster returns a roster holding chars in order. Duplicates are dropped.
func NewRoster(chars ...*Character) *Roster {
	r := &Roster{index: make(map[string]*Character)}
	for _, c := range chars {
		_ = r.Add(c)
	}
	return r
}

// Add appends c. Names and slugs must be unique.
func (r *Roster) Add(c *Character) error {
	if c == nil {
		return fmt.Errorf("nil character")
	}
	for _, key := range []string{strings.ToLower(c.Name), c.Slug()} {
		if existing, ok := r.index[key]; ok {
			return fmt.Errorf("duplicate character %q (already loaded from %s)", c.Name, existing.Source)
		}
	}
	r.chars = append(r.chars, c)
	r.index[strings.ToLower(c.Name)] = c
	r.index[c.Slug()] = c
	return nil
}

// All returns the characters in load order.
func (r *Roster) All() []*Character {
	return append([]*Character(nil), r.chars...)
}

// Len returns the number of characters.
func (r *Roster) Len() int { return len(r.chars) }

// Find looks a character up by name or slug, case-insensitively.
func (r *Roster) Find(name string) (*Character, bool) {
	if r == nil {
		return nil, false
	}
	key := strings.TrimSpace(name)
	if c, ok := r.index[strings.ToLower(key)]; ok {
		return c, true
	}
	c, ok := r.index[strutil.Slug(key)]
	return c, ok
}
