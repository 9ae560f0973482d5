package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Gun Flame", "Gun-Flame"},
		{"punctuation stripped", "Bandit Revolver (2nd)", "Bandit-Revolver-2nd"},
		{"dots and dashes kept", "j.236K-air", "j.236K-air"},
		{"outer whitespace trimmed", "  Volcanic Viper ", "Volcanic-Viper"},
		{"empty", "", ""},
		{"only unsafe", "!?#", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeID(tt.in))
		})
	}
}

func TestSafeIDIdempotent(t *testing.T) {
	inputs := []string{"Gun Flame", " a  b ", "Tyrant Rave (Follow-up)", "ÜberMove", "5[D]", "%ref(x)", "a\tb"}
	for _, in := range inputs {
		once := SafeID(in)
		assert.Equal(t, once, SafeID(once), "input %q", in)
		assert.Regexp(t, `^[A-Za-z0-9.\-]*$`, once)
	}
}

func TestIsContained(t *testing.T) {
	assert.True(t, IsContained("[S,K]", "["))
	assert.True(t, IsContained("(a)", "("))
	assert.True(t, IsContained("{x}", "{"))
	assert.True(t, IsContained(`"quoted"`, `"`))
	assert.True(t, IsContained("'q'", "'"))
	assert.True(t, IsContained(`"`, `"`), "a lone quote both opens and closes")
	assert.False(t, IsContained("[", "["))
	assert.False(t, IsContained("[S,K", "["))
	assert.False(t, IsContained("S,K]", "["))
	assert.False(t, IsContained("abc", ""))
}

func TestAppendLast(t *testing.T) {
	in := []string{"character", "page"}
	out, err := AppendLast(in, ".html")
	require.NoError(t, err)
	assert.Equal(t, []string{"character", "page.html"}, out)
	assert.Equal(t, []string{"character", "page"}, in, "input must not be modified")

	_, err = AppendLast(nil, ".html")
	require.ErrorIs(t, err, ErrEmpty)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "On Block", Humanize("OnBlock"))
	assert.Equal(t, "Damage", Humanize("Damage"))
	assert.Equal(t, "Projectile Level", Humanize("ProjectileLevel"))
	assert.Equal(t, "Chip Ratio", Humanize("chipRatio"))
	assert.Equal(t, "", Humanize(""))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "sol-badguy", Slug("Sol Badguy"))
	assert.Equal(t, "bedman", Slug("Bédman?"))
	assert.Equal(t, "a.b.a", Slug("A.B.A"))
}
