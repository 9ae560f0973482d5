// Package macro implements the %name(args) expansion language used inside
// character descriptions, conditions, notes and table cells.
package macro

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/framedoc/internal/logfields"
)

// Handler renders one call. It never fails: problems are logged through the
// context and a best-effort fragment is returned.
type Handler func(ctx *Context, args []Value) string

// Param declares one positional argument.
type Param struct {
	Name     string
	Required bool
}

// Macro is a named handler with its declared parameters.
type Macro struct {
	Name    string
	Params  []Param
	Handler Handler
}

func (m Macro) required() int {
	n := 0
	for _, p := range m.Params {
		if p.Required {
			n++
		}
	}
	return n
}

// Execute replaces every non-overlapping %name(...) call in text. Calls
// without a matching close paren, or missing required arguments, are left as
// they are.
func (m Macro) Execute(text string, ctx *Context) string {
	open := "%" + m.Name + "("
	if !strings.Contains(text, open) {
		return text
	}

	var out strings.Builder
	rest := text
	for {
		i := strings.Index(rest, open)
		if i < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:i])
		start := i + len(open)
		end := closingParen(rest[start:])
		if end < 0 {
			out.WriteString(open)
			rest = rest[start:]
			continue
		}

		call := rest[i : start+end+1]
		args := ParseArgs(rest[start : start+end])
		if rendered, ok := m.call(ctx, call, args); ok {
			out.WriteString(rendered)
		} else {
			out.WriteString(call)
		}
		rest = rest[start+end+1:]
	}
	return out.String()
}

func (m Macro) call(ctx *Context, call string, args []Value) (string, bool) {
	log := ctx.logger().With(logfields.Macro(m.Name))
	if missing := firstMissing(m.Params, args); missing != "" {
		log.Error("Macro call is missing a required argument",
			"call", call,
			"missing", missing,
			"want", m.required(),
			"got", len(args))
		return "", false
	}
	if len(args) > len(m.Params) {
		log.Warn("Ignoring extra macro arguments", "call", call, "max", len(m.Params))
		args = args[:len(m.Params)]
	}
	return m.Handler(ctx, args), true
}

func firstMissing(params []Param, args []Value) string {
	for i, p := range params {
		if !p.Required {
			continue
		}
		if i >= len(args) || args[i].IsEmpty() {
			return p.Name
		}
	}
	return ""
}

// closingParen returns the index in s of the paren closing a call whose
// arguments start at s[0], or -1.
func closingParen(s string) int {
	var (
		quote   rune
		depth   int
		escaped bool
		atStart = true
	)
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case (r == '"' || r == '\'') && atStart:
			quote = r
		case r == '(':
			depth++
		case r == ')':
			if depth == 0 {
				return i
			}
			depth--
		}
		switch {
		case r == ',' && quote == 0 && depth == 0:
			atStart = true
		case r != ' ' && r != '\t':
			atStart = false
		}
	}
	return -1
}

// Registry is an ordered table of macros.
type Registry struct {
	macros []Macro
	byName map[string]int
}

// NewRegistry returns a registry holding ms in order.
func NewRegistry(ms ...Macro) (*Registry, error) {
	r := &Registry{byName: make(map[string]int)}
	for _, m := range ms {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends m. Names must be unique.
func (r *Registry) Register(m Macro) error {
	if m.Name == "" || m.Handler == nil {
		return fmt.Errorf("macro: name and handler are required")
	}
	if _, ok := r.byName[m.Name]; ok {
		return fmt.Errorf("macro: %q already registered", m.Name)
	}
	r.byName[m.Name] = len(r.macros)
	r.macros = append(r.macros, m)
	return nil
}

// Lookup returns the macro registered under name.
func (r *Registry) Lookup(name string) (Macro, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Macro{}, false
	}
	return r.macros[i], true
}

// Names lists macro names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.macros))
	for _, m := range r.macros {
		names = append(names, m.Name)
	}
	return names
}

// Resolve applies every macro once, in registration order.
func (r *Registry) Resolve(text string, ctx *Context) string {
	if text == "" || !strings.Contains(text, "%") {
		return text
	}
	for _, m := range r.macros {
		text = m.Execute(text, ctx)
	}
	return text
}
