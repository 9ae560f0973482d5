// Package input renders move inputs as button-coloured HTML fragments.
package input

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSeparator separates alternative inputs such as "236P/K".
const DefaultSeparator = "/"

// Neutral is the colour used when no button is known for an input.
const Neutral = "x"

// ErrMismatch reports explicit input and button arrays of different lengths.
var ErrMismatch = errors.New("input: inputs and buttons differ in length")

// namedColours are button values that are colours in their own right and are
// never split into letters.
var namedColours = map[string]bool{"generic": true, "or": true, "taunt": true}

// Split breaks a delimited input string into positions. An empty separator
// keeps the string whole.
func Split(raw, sep string) []string {
	if raw == "" {
		return nil
	}
	if sep == "" {
		return []string{raw}
	}
	return strings.Split(raw, sep)
}

// ParseButtons expands a compact button string ("SK") into one button per
// input position.
func ParseButtons(raw string) []string {
	if raw == "" {
		return nil
	}
	if namedColours[strings.ToLower(raw)] {
		return []string{raw}
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		out = append(out, string(r))
	}
	return out
}

// Validate checks the positional pairing of explicit input and button arrays.
func Validate(inputs, buttons []string) error {
	if len(buttons) == 0 || len(inputs) == len(buttons) {
		return nil
	}
	return fmt.Errorf("%w: %d inputs, %d buttons", ErrMismatch, len(inputs), len(buttons))
}

// Render emits one coloured span per input joined by "or" separators. With
// clean set the result is plain text suitable for ids and titles.
func Render(inputs, buttons []string, sep string, clean bool) string {
	if len(inputs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, in := range inputs {
		if clean {
			b.WriteString(in)
		} else {
			fmt.Fprintf(&b, "<em button=%s>%s</em>", Colour(buttons, i), in)
		}
		if i < len(inputs)-1 && sep != "" {
			if clean {
				b.WriteString(sep)
			} else {
				fmt.Fprintf(&b, "<em button=or>%s</em>", sep)
			}
		}
	}
	return b.String()
}

// RenderString splits raw on sep and renders it.
func RenderString(raw string, buttons []string, sep string, clean bool) string {
	return Render(Split(raw, sep), buttons, sep, clean)
}

// Colour returns the lower-cased button for position i, or Neutral.
func Colour(buttons []string, i int) string {
	if i < 0 || i >= len(buttons) || strings.TrimSpace(buttons[i]) == "" {
		return Neutral
	}
	return strings.ToLower(strings.TrimSpace(buttons[i]))
}
