package macro

import (
	"strconv"
	"strings"

	"git.home.luguber.info/inful/framedoc/internal/strutil"
)

// ValueKind classifies a parsed macro argument.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindList
)

// Value is one parsed macro argument.
type Value struct {
	Kind ValueKind
	Text string
	List []Value
}

// String returns the argument text. Lists are joined with ",".
func (v Value) String() string {
	if v.Kind != KindList {
		return v.Text
	}
	return strings.Join(v.Strings(), ",")
}

// Strings returns list elements as text, or the scalar as a one-element slice.
func (v Value) Strings() []string {
	if v.Kind != KindList {
		if v.Text == "" {
			return nil
		}
		return []string{v.Text}
	}
	out := make([]string, 0, len(v.List))
	for _, e := range v.List {
		out = append(out, e.String())
	}
	return out
}

// Bool reports whether the argument is a true boolean.
func (v Value) Bool() bool { return v.Kind == KindBool && v.Text == "true" }

// IsEmpty reports whether the argument carries no text.
func (v Value) IsEmpty() bool {
	if v.Kind == KindList {
		return len(v.List) == 0
	}
	return v.Text == ""
}

// ParseArgs splits a macro argument list on top-level commas. Commas inside
// quotes, brackets, braces or parentheses, or escaped with a backslash, do not
// split. A quote only opens at the start of an argument so apostrophes in
// plain text are kept literally.
func ParseArgs(text string) []Value {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var (
		raws    []string
		cur     strings.Builder
		quote   rune
		depth   int
		escaped bool
	)
	for _, r := range text {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
			continue
		case r == '\\':
			cur.WriteRune(r)
			escaped = true
			continue
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case (r == '"' || r == '\'') && strings.TrimSpace(cur.String()) == "":
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			raws = append(raws, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	raws = append(raws, cur.String())

	values := make([]Value, 0, len(raws))
	for _, raw := range raws {
		values = append(values, parseValue(raw))
	}
	return values
}

func parseValue(raw string) Value {
	t := strings.TrimSpace(raw)
	switch {
	case len(t) >= 2 && (strutil.IsContained(t, `"`) || strutil.IsContained(t, "'")):
		return Value{Kind: KindString, Text: unescape(t[1 : len(t)-1])}
	case strutil.IsContained(t, "["):
		return Value{Kind: KindList, List: ParseArgs(t[1 : len(t)-1])}
	case t == "true" || t == "false":
		return Value{Kind: KindBool, Text: t}
	}
	if _, err := strconv.ParseFloat(t, 64); err == nil {
		return Value{Kind: KindNumber, Text: t}
	}
	return Value{Kind: KindString, Text: unescape(t)}
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	if escaped {
		b.WriteByte('\\')
	}
	return b.String()
}
