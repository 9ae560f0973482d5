package site

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/framedoc/internal/events"
	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
	"git.home.luguber.info/inful/framedoc/internal/history"
	"git.home.luguber.info/inful/framedoc/internal/logging"
)

const solTOML = `[Character]
Name = "Sol Badguy"
Description = "See %ref(gunflame)."
IconPath = "icon.png"
PortraitPath = "portrait.png"
Type = "Rushdown"

[[Character.Specials]]
Name = "Gun Flame"
ID = "gunflame"
Inputs = "236P"
Buttons = "P"
Description = "Ground projectile."
`

const kyTOML = `[Character]
Name = "Ky Kiske"
Description = "Rival of %refOther(Sol Badguy, gunflame)."
IconPath = "icon.png"
PortraitPath = "portrait.png"
Type = "Shoto"
`

type recordingPublisher struct {
	mu     sync.Mutex
	pages  []events.PageEvent
	builds []events.BuildEvent
	broken []events.BrokenLinkEvent
}

func (p *recordingPublisher) PublishPage(_ context.Context, e events.PageEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages = append(p.pages, e)
	return nil
}

func (p *recordingPublisher) PublishBuild(_ context.Context, e events.BuildEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.builds = append(p.builds, e)
	return nil
}

func (p *recordingPublisher) PublishBrokenLink(_ context.Context, e events.BrokenLinkEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broken = append(p.broken, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	data, out string
	clock     time.Time
	counter   *logging.Counter
	logger    *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		data:    filepath.Join(root, "data"),
		out:     filepath.Join(root, "site"),
		clock:   time.Date(2024, 4, 2, 15, 4, 5, 0, time.UTC),
		counter: &logging.Counter{},
	}
	f.logger = logging.New(io.Discard, logging.FormatText, slog.LevelDebug, f.counter)
	require.NoError(t, os.MkdirAll(f.data, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(f.data, "sol.toml"), []byte(solTOML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(f.data, "ky.toml"), []byte(kyTOML), 0o600))
	return f
}

func (f *fixture) builder(opts Options, deps Deps) *Builder {
	opts.DataDir = f.data
	opts.OutputDir = f.out
	deps.Logger = f.logger
	deps.Counter = f.counter
	deps.Now = func() time.Time { return f.clock }
	return New(opts, deps)
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.out, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestBuildWritesPages(t *testing.T) {
	f := newFixture(t)
	pub := &recordingPublisher{}

	report, err := f.builder(Options{}, Deps{Events: pub}).Build(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Characters)
	assert.Equal(t, 3, report.Count(history.PageWritten))
	require.Len(t, pub.pages, 3)
	require.Len(t, pub.builds, 1)
	assert.Equal(t, "succeeded", pub.builds[0].Status)

	index := f.read(t, IndexPage)
	assert.Contains(t, index, "Tue Apr 02 2024")
	assert.Contains(t, index, "3:04:05 PM")
	assert.NotContains(t, index, "%DATE%")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.read(t, "characters/ky-kiske.html")))
	require.NoError(t, err)
	link := doc.Find("a.ref-chara")
	require.Equal(t, 1, link.Length())
	href, _ := link.Attr("href")
	assert.Equal(t, "./sol-badguy.html", href)

	sol := f.read(t, "characters/sol-badguy.html")
	assert.Contains(t, sol, `href="#gunflame"`)
}

func TestBuildSkipsUnchangedPages(t *testing.T) {
	f := newFixture(t)
	_, err := f.builder(Options{}, Deps{}).Build(t.Context())
	require.NoError(t, err)
	before := f.read(t, IndexPage)

	f.clock = f.clock.Add(48 * time.Hour)
	report, err := f.builder(Options{}, Deps{}).Build(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count(history.PageUnchanged))
	assert.Equal(t, before, f.read(t, IndexPage), "unchanged pages keep their old timestamp")

	report, err = f.builder(Options{Force: true}, Deps{}).Build(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count(history.PageWritten))
	assert.Contains(t, f.read(t, IndexPage), "Thu Apr 04 2024")
}

func TestBuildRewritesChangedCharacter(t *testing.T) {
	f := newFixture(t)
	_, err := f.builder(Options{}, Deps{}).Build(t.Context())
	require.NoError(t, err)

	updated := strings.Replace(kyTOML, `Type = "Shoto"`, `Type = "All-rounder"`, 1)
	require.NoError(t, os.WriteFile(filepath.Join(f.data, "ky.toml"), []byte(updated), 0o600))

	report, err := f.builder(Options{}, Deps{}).Build(t.Context())
	require.NoError(t, err)

	status := map[string]history.PageStatus{}
	for _, p := range report.Pages {
		status[p.Path] = p.Status
	}
	assert.Equal(t, history.PageWritten, status["characters/ky-kiske.html"])
	assert.Equal(t, history.PageWritten, status[IndexPage], "the index lists character types")
	assert.Equal(t, history.PageUnchanged, status["characters/sol-badguy.html"])
}

func TestBuildDryRun(t *testing.T) {
	f := newFixture(t)
	report, err := f.builder(Options{DryRun: true, VerifyLinks: true}, Deps{}).Build(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count(history.PageSkipped))
	assert.Empty(t, report.BrokenLinks)
	assert.NoDirExists(t, f.out)
}

func TestBuildRecordsHistory(t *testing.T) {
	f := newFixture(t)
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	report, err := f.builder(Options{Trigger: "watch"}, Deps{History: store}).Build(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, report.BuildID)

	builds, err := store.Recent(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, "watch", builds[0].Trigger)
	assert.Equal(t, history.StatusSucceeded, builds[0].Status)
	assert.Equal(t, 3, builds[0].Written)
	assert.Equal(t, 2, builds[0].Characters)

	pages, err := store.Pages(t.Context(), report.BuildID)
	require.NoError(t, err)
	assert.Len(t, pages, 3)
	for _, p := range pages {
		assert.NotEmpty(t, p.Fingerprint, p.Path)
	}
}

func TestFingerprintDependsOnPath(t *testing.T) {
	a := Fingerprint("characters/ky.html", "<html></html>")
	assert.NotEmpty(t, a)
	assert.Equal(t, a, Fingerprint("characters/ky.html", "<html></html>"))
	assert.NotEqual(t, a, Fingerprint("characters/sol.html", "<html></html>"))
	assert.NotEqual(t, a, Fingerprint("characters/ky.html", "<html><body></body></html>"))
}

func TestBuildVerifiesLinks(t *testing.T) {
	f := newFixture(t)
	pub := &recordingPublisher{}

	report, err := f.builder(Options{VerifyLinks: true}, Deps{Events: pub}).Build(t.Context())
	require.NoError(t, err)

	require.NotEmpty(t, report.BrokenLinks, "character images are not part of the generated site")
	var urls []string
	for _, b := range report.BrokenLinks {
		urls = append(urls, b.URL)
	}
	assert.Contains(t, urls, "../images/sol-badguy/icon.png")
	assert.Len(t, pub.broken, len(report.BrokenLinks))
	assert.Positive(t, report.Warnings)
}

func TestBuildMissingDataDir(t *testing.T) {
	f := newFixture(t)
	f.data = filepath.Join(f.data, "missing")
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = f.builder(Options{}, Deps{History: store}).Build(t.Context())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))

	builds, err := store.Recent(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, history.StatusFailed, builds[0].Status)
	assert.NotEmpty(t, builds[0].Message)
}

func TestWritePage(t *testing.T) {
	root := t.TempDir()

	path, err := WritePage(root, "characters/sol.html", "one")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "characters", "sol.html"), path)

	_, err = WritePage(root, "characters/sol.html", "two")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "characters"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")

	_, err = WritePage(root, "../escape.html", "x")
	require.Error(t, err)
	_, err = WritePage(root, "/abs.html", "x")
	require.Error(t, err)
	_, err = WritePage("", "a.html", "x")
	require.Error(t, err)
}
