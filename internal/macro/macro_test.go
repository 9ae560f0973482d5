package macro

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/framedoc/internal/character"
)

func fixture(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	sol := &character.Character{
		Name: "Sol Badguy",
		Sections: []character.Section{
			{Key: character.SectionSpecials, Items: []character.Item{
				&character.Move{Name: "Gun Flame", ID: "gunflame", Inputs: character.Raw("236P"), Buttons: character.Raw("P")},
				&character.Move{Inputs: character.Seq("236S", "214K"), Buttons: character.Seq("S", "K")},
			}},
			{Key: character.SectionNormals, Items: []character.Item{
				&character.Move{Name: "Far Slash", Inputs: character.Raw("f.S"), Buttons: character.Raw("S")},
			}},
		},
	}
	ky := &character.Character{
		Name: "Ky Kiske",
		Sections: []character.Section{
			{Key: character.SectionSpecials, Items: []character.Item{
				&character.Move{Name: "Stun Edge", Inputs: character.Raw("236S"), Buttons: character.Raw("S")},
			}},
		},
	}

	var buf bytes.Buffer
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, "images", "sol-badguy"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "images", "sol-badguy", "gf.png"), nil, 0o600))

	return &Context{
		Character: sol,
		Roster:    character.NewRoster(sol, ky),
		Logger:    slog.New(slog.NewTextHandler(&buf, nil)),
		Name:      sol.Name,
		OutputDir: out,
		PageDir:   "characters",
	}, &buf
}

func TestResolveLeavesPlainTextUntouched(t *testing.T) {
	ctx, _ := fixture(t)
	text := "No macros here, 100% plain (really)."
	assert.Equal(t, text, Builtins().Resolve(text, ctx))
}

func TestExecuteReplacesOnlyTheCall(t *testing.T) {
	ctx, _ := fixture(t)
	r := Builtins()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "ref by id",
			in:   "Use %ref(gunflame) often.",
			want: `Use <a href="#gunflame" class=ref><em button=p>Gun Flame</em></a> often.`,
		},
		{
			name: "ref unnamed move",
			in:   "%ref(236S/214K)",
			want: `<a href="#236S214K" class=ref><em button=s>236S</em><em button=or>/</em><em button=k>214K</em></a>`,
		},
		{
			name: "ref explicit text and buttons",
			in:   "%ref(gunflame, GF, H)",
			want: `<a href="#gunflame" class=ref><em button=h>GF</em></a>`,
		},
		{
			name: "refOther",
			in:   "vs %refOther(Ky Kiske, Stun Edge)!",
			want: `vs <a href="./ky-kiske.html" class=ref-chara>Ky Kiske</a> <a href="./ky-kiske.html#Stun-Edge" class=ref><em button=s>Stun Edge</em></a>!`,
		},
		{
			name: "btn inferred",
			in:   "%btn(Far Slash)",
			want: `<em class=btn button="s">Far Slash</em>`,
		},
		{
			name: "btn multi",
			in:   "%btn(2S/5H, SH)",
			want: `<em class=btn><em button=s>2S</em><em button=or>/</em><em button=h>5H</em></em>`,
		},
		{
			name: "auto",
			in:   "%auto(236S~P)",
			want: `<em button=s>236S</em><span>~</span><em button=p>P</em>`,
		},
		{
			name: "note",
			in:   `%note("Hits <low>", low)`,
			want: `<span class=note title="Hits &lt;low&gt;">low</span>`,
		},
		{
			name: "external url",
			in:   "%url(https://dustloop.com, Dustloop, wiki)",
			want: `<a href="https://dustloop.com" title="Dustloop" target=_blank rel=noopener>wiki</a>`,
		},
		{
			name: "img with note",
			in:   "%img(gf.png, Gun Flame, startup)",
			want: `<img src="../images/sol-badguy/gf.png" alt="Gun Flame" title="gf.png"><span class=image-note>startup</span>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.in, ctx))
		})
	}
}

func TestMalformedCallsPassThrough(t *testing.T) {
	ctx, logs := fixture(t)
	r := Builtins()

	assert.Equal(t, "broken %ref(gunflame", r.Resolve("broken %ref(gunflame", ctx))
	assert.Equal(t, "%note(only one)", r.Resolve("%note(only one)", ctx))
	assert.Equal(t, "%url(https://dustloop.com, , wiki)", r.Resolve("%url(https://dustloop.com, , wiki)", ctx))
	assert.Equal(t, "%img(gf.png)", r.Resolve("%img(gf.png)", ctx))
	assert.Contains(t, logs.String(), "missing a required argument")
}

func TestMissingTargetsWarn(t *testing.T) {
	ctx, logs := fixture(t)
	r := Builtins()

	out := r.Resolve("%refOther(May, Mr. Dolphin)", ctx)
	assert.Equal(t, "May Mr. Dolphin", out)
	assert.Contains(t, logs.String(), "Could not find referenced character")

	out = r.Resolve("%img(missing.png, nothing)", ctx)
	assert.Contains(t, out, `src="../images/sol-badguy/missing.png"`)
	assert.Contains(t, logs.String(), "Could not find requested image")

	out = r.Resolve("%url(./nowhere.html, alt, text)", ctx)
	assert.Equal(t, `<a href="./nowhere.html" title="alt">text</a>`, out)
	assert.Contains(t, logs.String(), "Could not find linked page")

	out = r.Resolve("%ref(nothing)", ctx)
	assert.Equal(t, `<a href="#nothing" class=ref><em button=x>nothing</em></a>`, out)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"note", "url", "img", "refOther", "ref", "btn", "auto"}, Builtins().Names())

	upper := Macro{Name: "up", Params: []Param{{"text", true}}, Handler: func(_ *Context, a []Value) string {
		return "[" + a[0].String() + "]"
	}}
	r, err := NewRegistry(upper)
	require.NoError(t, err)
	assert.Error(t, r.Register(upper))

	_, ok := r.Lookup("up")
	assert.True(t, ok)
	assert.Equal(t, "a [x] b [y, z]", r.Resolve("a %up(x) b %up('y, z')", nil))
}
