package changes

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = "<html>\n<body>%BODY%</body>\n<footer>\n" + FooterPrefix + "%DATE% at %TIME% (%TZ%).</p>\n</footer>\n</html>\n"

func render(body string) string {
	return string(bytes.ReplaceAll([]byte(page), []byte("%BODY%"), []byte(body)))
}

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestHasChanged(t *testing.T) {
	then := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	path := write(t, Stamp(render("same"), then))
	d := Detector{}

	assert.False(t, d.HasChanged(path, render("same")), "only the timestamp differs")
	assert.True(t, d.HasChanged(path, render("different")))
	assert.True(t, d.HasChanged(filepath.Join(t.TempDir(), "missing.html"), render("same")))
}

func TestHasChangedWithoutFooter(t *testing.T) {
	var buf bytes.Buffer
	d := Detector{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	path := write(t, "<html>hand written</html>")

	assert.True(t, d.HasChanged(path, render("same")))
	assert.Contains(t, buf.String(), "no update footer")
}

func TestHasChangedFooterFormatChanged(t *testing.T) {
	path := write(t, "<html>\n"+FooterPrefix+"sometime.</p>\n")
	assert.True(t, Detector{}.HasChanged(path, "<html>\n"+FooterPrefix+"%DATE% at %TIME% (%TZ%).</p>\n"))
}

func TestStamp(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	got := Stamp(FooterPrefix+"%DATE% at %TIME% (%TZ%).</p>", now)
	assert.Equal(t, FooterPrefix+"Sat Mar 09 2024 at 2:05:07 PM (UTC).</p>", got)
}

func TestStampLeavesBodyTokens(t *testing.T) {
	then := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	candidate := render("Buffs last until %TIME% runs out.")

	stamped := Stamp(candidate, then)
	assert.Contains(t, stamped, "Buffs last until %TIME% runs out.")
	assert.Contains(t, stamped, FooterPrefix+"Sat Mar 09 2024 at 2:05:07 PM (UTC).</p>")

	path := write(t, stamped)
	assert.False(t, Detector{}.HasChanged(path, candidate), "body tokens must not force a rewrite")
}

func TestStampWithoutFooter(t *testing.T) {
	assert.Equal(t, "<p>%DATE%</p>", Stamp("<p>%DATE%</p>", time.Now()))
}

func TestRestamp(t *testing.T) {
	got, ok := restamp("x %DATE% y %TZ%", "x Mon Jan 01 2024 y CET")
	require.True(t, ok)
	assert.Equal(t, "x Mon Jan 01 2024 y CET", got)

	_, ok = restamp("x %DATE% y", "z")
	assert.False(t, ok)
}
