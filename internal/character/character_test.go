package character

import (
	"io"
	"log/slog"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestLoadPreservesSectionOrder(t *testing.T) {
	c, err := Load("testdata/sol.toml", quietLogger())
	require.NoError(t, err)

	assert.Equal(t, "Sol Badguy", c.Name)
	assert.Equal(t, "sol-badguy", c.Slug())
	assert.Equal(t, Scalar("420"), c.Health)
	assert.Equal(t, []string{"Volcanic Viper"}, c.Reversals.Values)

	var keys []string
	for _, s := range c.Sections {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []string{"Mechanics", "Overview Notes", "Specials", "Normals"}, keys)
}

func TestLoadItemKinds(t *testing.T) {
	c, err := Load("testdata/sol.toml", quietLogger())
	require.NoError(t, err)

	mech, ok := c.Section(SectionMechanics)
	require.True(t, ok)
	require.Len(t, mech.Items, 1)
	assert.Equal(t, Text{Name: "Wild Throw", Description: "Command grab."}, mech.Items[0])

	custom, ok := c.Section("Overview Notes")
	require.True(t, ok)
	assert.IsType(t, Summary{}, custom.Items[0])

	specials, ok := c.Section(SectionSpecials)
	require.True(t, ok)
	require.Len(t, specials.Items, 2)
	gf, ok := specials.Items[0].(*Move)
	require.True(t, ok)
	assert.True(t, gf.Inputs.Delimited)
	assert.Equal(t, []string{"236P"}, gf.InputList())
	require.Len(t, gf.Data, 1)
	assert.Equal(t, Scalar("50"), gf.Data[0].Damage)
	assert.Nil(t, gf.Data[0].Version)
	assert.False(t, gf.Data[0].Invuln.IsSet())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("testdata/broken.toml", quietLogger())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryData))

	_, err = Load("testdata/noname.toml", quietLogger())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryData))

	_, err = Load("testdata/missing.toml", quietLogger())
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestParseSkipsNonArraySection(t *testing.T) {
	doc := `
[Character]
Name = "Ky"

[Character.Weird]
Foo = "bar"

[[Character.Supers]]
Name = "Ride the Lightning"
Inputs = "632146H"
Buttons = "H"
`
	c, err := Parse([]byte(doc), "ky.toml", quietLogger())
	require.NoError(t, err)
	require.Len(t, c.Sections, 1)
	assert.Equal(t, "Supers", c.Sections[0].Key)
	assert.Equal(t, "Supers", c.Sections[0].Title())
}

func TestParseUnknownType(t *testing.T) {
	doc := `
[Character]
Name = "Ky"

[[Character.Extra]]
Type = "Gallery"
Name = "Pics"

[[Character.Extra]]
Name = "Untagged"
`
	c, err := Parse([]byte(doc), "ky.toml", quietLogger())
	require.NoError(t, err)
	require.Len(t, c.Sections[0].Items, 2)
	assert.Equal(t, Kind("Gallery"), c.Sections[0].Items[0].Kind())
	assert.IsType(t, Unknown{}, c.Sections[0].Items[1])
}

func TestSequenceUnmarshal(t *testing.T) {
	var doc struct {
		A Sequence
		B Sequence
		C Sequence
	}
	_, err := toml.Decode(`A = "214K"
B = ["S", "H"]
C = [1, 2.5]`, &doc)
	require.NoError(t, err)
	assert.Equal(t, Raw("214K"), doc.A)
	assert.Equal(t, Seq("S", "H"), doc.B)
	assert.Equal(t, Seq("1", "2.5"), doc.C)
}

func TestMoveHelpers(t *testing.T) {
	m := &Move{Inputs: Seq("236S", "214K"), Buttons: Seq("S", "K"), HoldOK: true, AirOK: true}
	assert.Equal(t, "236S/214K", m.CleanInput())
	assert.Equal(t, "236S/214K", m.Anchor())
	assert.Equal(t, "236S214K", m.AnchorID())
	assert.Equal(t, "(Hold, Air OK)", m.Extras())
	assert.Equal(t, "S", m.FirstButton())

	assert.Equal(t, "(Hold OK)", (&Move{HoldOK: true}).Extras())
	assert.Equal(t, "(Air OK)", (&Move{AirOK: true}).Extras())
	assert.Equal(t, "", (&Move{}).Extras())

	bad := &Move{Inputs: Seq("236S", "214K"), Buttons: Seq("S")}
	s, err := bad.InputString(false)
	assert.Error(t, err)
	assert.Empty(t, s)
	s, err = bad.InputString(true)
	assert.NoError(t, err)
	assert.Equal(t, "236S/214K", s)
	assert.Equal(t, "236S214K", bad.AnchorID())
	assert.Equal(t, "236S/214K", bad.PlainName())

	raw := &Move{Inputs: Raw("2S~5H"), Buttons: Raw("SH"), Separator: "~"}
	assert.NoError(t, raw.Validate())
	assert.Equal(t, []string{"2S", "5H"}, raw.InputList())
	assert.Equal(t, []string{"S", "H"}, raw.ButtonList())
}

func TestFindMove(t *testing.T) {
	c, err := Load("testdata/sol.toml", quietLogger())
	require.NoError(t, err)

	m, ok := c.FindMove("gunflame")
	require.True(t, ok)
	assert.Equal(t, "Gun Flame", m.Name)

	m, ok = c.FindMove("volcanic viper")
	require.True(t, ok)
	assert.Equal(t, "623S/623H", m.CleanInput())

	m, ok = c.FindMove("5K")
	require.True(t, ok)
	assert.Equal(t, "Fast poke.", m.Description)

	_, ok = c.FindMove("nope")
	assert.False(t, ok)

	m, ok = c.FindByName("Gun Flame")
	require.True(t, ok)
	assert.Equal(t, "gunflame", m.ID)
}

func TestRoster(t *testing.T) {
	sol := &Character{Name: "Sol Badguy"}
	ky := &Character{Name: "Ky Kiske"}
	r := NewRoster(sol, ky)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []*Character{sol, ky}, r.All())

	got, ok := r.Find("sol badguy")
	require.True(t, ok)
	assert.Same(t, sol, got)
	got, ok = r.Find("ky-kiske")
	require.True(t, ok)
	assert.Same(t, ky, got)

	assert.Error(t, r.Add(&Character{Name: "SOL BADGUY"}))
	_, ok = r.Find("May")
	assert.False(t, ok)
}

func TestLoadDirSkipsBadFiles(t *testing.T) {
	r, err := LoadDir("testdata", quietLogger())
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())
	assert.Equal(t, "Sol Badguy", r.All()[0].Name)

	_, err = LoadDir("testdata/none", quietLogger())
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}
