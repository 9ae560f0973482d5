package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	got := Render([]string{"236S", "214K"}, []string{"S", "K"}, "/", false)
	assert.Equal(t, "<em button=s>236S</em><em button=or>/</em><em button=k>214K</em>", got)
}

func TestRenderClean(t *testing.T) {
	assert.Equal(t, "236S/214K", Render([]string{"236S", "214K"}, []string{"S", "K"}, "/", true))
}

func TestRenderMissingButtonsUseNeutral(t *testing.T) {
	got := Render([]string{"236P", "236K"}, []string{"P"}, "/", false)
	assert.Equal(t, "<em button=p>236P</em><em button=or>/</em><em button=x>236K</em>", got)
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "", Render(nil, []string{"S"}, "/", false))
	assert.Equal(t, "", RenderString("", nil, "/", true))
}

func TestRenderString(t *testing.T) {
	assert.Equal(t, "632146H", RenderString("632146H", []string{"H"}, "/", true))
	assert.Equal(t,
		"<em button=s>236S</em><em button=or>~</em><em button=p>P</em>",
		RenderString("236S~P", []string{"S", "P"}, "~", false))
}

func TestParseButtons(t *testing.T) {
	assert.Equal(t, []string{"S", "K"}, ParseButtons("SK"))
	assert.Equal(t, []string{"generic"}, ParseButtons("generic"))
	assert.Equal(t, []string{"Taunt"}, ParseButtons("Taunt"))
	assert.Nil(t, ParseButtons(""))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate([]string{"a", "b"}, []string{"S", "K"}))
	require.NoError(t, Validate([]string{"a", "b"}, nil))
	require.ErrorIs(t, Validate([]string{"a", "b"}, []string{"S"}), ErrMismatch)
}

func TestAutoResolve(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Part
	}{
		{
			name: "separator between buttons",
			in:   "236S~P",
			want: []Part{{"236S", "S"}, {"~", ""}, {"P", "P"}},
		},
		{
			name: "second button starts a new run",
			in:   "5SH",
			want: []Part{{"5S", "S"}, {"H", "H"}},
		},
		{
			name: "bracketed press stays together",
			in:   "2[S]",
			want: []Part{{"2[S]", "S"}},
		},
		{
			name: "annotation stays uncoloured",
			in:   "236S delay 5K",
			want: []Part{{"236S", "S"}, {" delay ", ""}, {"5K", "K"}},
		},
		{
			name: "counter hit term suppresses its colour",
			in:   "CH 5H",
			want: []Part{{"CH ", ""}, {"5H", "H"}},
		},
		{
			name: "plain text",
			in:   "2D",
			want: []Part{{"2D", ""}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AutoResolve(tt.in))
		})
	}
}

func TestAutoResolveEmpty(t *testing.T) {
	assert.Empty(t, AutoResolve(""))
}

func TestRenderAuto(t *testing.T) {
	assert.Equal(t, "<em button=s>236S</em><span>~</span><em button=p>P</em>", RenderAuto("236S~P"))
}
