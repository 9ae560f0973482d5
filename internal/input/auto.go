package input

import (
	"fmt"
	"regexp"
	"strings"
)

// Part is one run of an auto-resolved combo string. Colour is empty for
// uncoloured text such as separators and annotations.
type Part struct {
	Text   string
	Colour string
}

var (
	autoButtons    = "PKSHX"
	autoSeparators = []string{"/", "~", ">", "▷", "+", " "}
	autoTerms      = []string{"dl", "delay", "whiff", "land", "jc", "dc", "CH", "aa", "ias", "tk", "ws", "wb"}
	autoSplitter   = buildSplitter()
)

func buildSplitter() *regexp.Regexp {
	alts := make([]string, 0, len(autoSeparators)+len(autoTerms))
	for _, s := range append(append([]string{}, autoSeparators...), autoTerms...) {
		alts = append(alts, regexp.QuoteMeta(s))
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(alts, "|") + `)`)
}

// splitPieces splits text on separators and terms, keeping the delimiters as
// pieces of their own.
func splitPieces(text string) []string {
	var pieces []string
	last := 0
	for _, loc := range autoSplitter.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			pieces = append(pieces, text[last:loc[0]])
		}
		if loc[1] > loc[0] {
			pieces = append(pieces, text[loc[0]:loc[1]])
		}
		last = loc[1]
	}
	if last < len(text) {
		pieces = append(pieces, text[last:])
	}
	return pieces
}

func isButton(c byte) bool { return strings.IndexByte(autoButtons, c) >= 0 }

func hasButton(piece string) bool { return strings.ContainsAny(piece, autoButtons) }

func hasTerm(piece string) bool {
	lower := strings.ToLower(piece)
	for _, term := range autoTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// AutoResolve splits a raw combo string into coloured and uncoloured runs.
// A bracketed simultaneous press such as "[S]" stays in one run; a bracket
// left open at the end of a piece carries into the next piece.
func AutoResolve(text string) []Part {
	var result []Part
	open := false

	for _, piece := range splitPieces(text) {
		if !hasButton(piece) {
			result = append(result, Part{Text: piece})
			if i, j := strings.LastIndexByte(piece, '['), strings.LastIndexByte(piece, ']'); i > j {
				open = true
			} else if j > i {
				open = false
			}
			continue
		}

		bracket := -1
		if open {
			bracket = 0
		}
		var parts []Part
		cur, button := "", ""
		for j := 0; j < len(piece); j++ {
			c := piece[j]
			switch c {
			case '[':
				bracket = j
			case ']':
				bracket = -1
			}
			if !isButton(c) {
				cur += string(c)
				continue
			}
			if button == "" {
				button = string(c)
				cur += string(c)
				continue
			}
			if bracket == -1 {
				parts = append(parts, Part{Text: cur, Colour: button})
				cur = string(c)
			} else {
				// keep the bracketed prefix with the press that follows it
				diff := j - bracket
				cut := max(len(cur)-diff, 0)
				parts = append(parts, Part{Text: cur[:cut], Colour: button})
				cur = piece[bracket : j+1]
			}
			button = string(c)
		}
		open = bracket != -1

		if hasTerm(piece) {
			button = ""
		}
		result = append(result, parts...)
		result = append(result, Part{Text: cur, Colour: button})
	}
	return merge(result)
}

// merge joins adjacent runs of the same colour and drops empty runs.
func merge(parts []Part) []Part {
	out := make([]Part, 0, len(parts))
	for _, p := range parts {
		if p.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Colour == p.Colour {
			out[n-1].Text += p.Text
			continue
		}
		out = append(out, p)
	}
	return out
}

// RenderParts turns resolved runs into HTML.
func RenderParts(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		if p.Colour == "" {
			fmt.Fprintf(&b, "<span>%s</span>", p.Text)
			continue
		}
		fmt.Fprintf(&b, "<em button=%s>%s</em>", strings.ToLower(p.Colour), p.Text)
	}
	return b.String()
}

// RenderAuto resolves and renders a combo string.
func RenderAuto(text string) string {
	return RenderParts(AutoResolve(text))
}
