package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	r := New()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"inline unwrapped", "Hits **twice**.", "Hits <strong>twice</strong>."},
		{"raw html kept", `Use <em button=s>5S</em> first`, `Use <em button=s>5S</em> first`},
		{"paragraphs kept", "one\n\ntwo", "<p>one</p>\n<p>two</p>"},
		{"list", "- a\n- b", "<ul>\n<li>a</li>\n<li>b</li>\n</ul>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Render(tt.in))
		})
	}
}
