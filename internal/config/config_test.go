package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framedoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, DefaultDataDir, cfg.Data.Dir)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Dir)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Equal(t, DefaultCron, cfg.Schedule.Cron)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	assert.Empty(t, cfg.Events.Subject, "events stay disabled without a URL")
}

func TestLoadFile(t *testing.T) {
	t.Setenv("TEST_NATS", "nats://localhost:4222")
	path := writeConfig(t, `
version: "1"
data:
  dir: chars
  repository:
    url: https://example.com/data.git
    auth:
      type: " Token "
      token: abc
output:
  dir: site
render:
  markdown: true
  verify_links: true
logging:
  level: DEBUG
  format: json
events:
  nats_url: ${TEST_NATS}
watch:
  debounce: 1s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "chars", cfg.Data.Dir)
	require.NotNil(t, cfg.Data.Repository)
	assert.Equal(t, DefaultBranch, cfg.Data.Repository.Branch)
	assert.Equal(t, AuthToken, cfg.Data.Repository.Auth.Type)
	assert.Equal(t, "site", cfg.Output.Dir)
	assert.True(t, cfg.Render.Markdown)
	assert.True(t, cfg.Render.VerifyLinks)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, "nats://localhost:4222", cfg.Events.NATSURL)
	assert.Equal(t, DefaultEventsSubject, cfg.Events.Subject)
	assert.Equal(t, DefaultEventsTimeout, cfg.Events.Timeout)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.NotEmpty(t, cfg.Warnings)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FRAMEDOC_OUTPUT_DIR", "public")
	t.Setenv("FRAMEDOC_LOG_LEVEL", "warn")
	t.Setenv("FRAMEDOC_RENDER_MARKDOWN", "true")
	path := writeConfig(t, "output:\n  dir: site\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "public", cfg.Output.Dir)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.True(t, cfg.Render.Markdown)
}

func TestLoadUnknownLevelWarns(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: chatty\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "logging.level")
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := Load(writeConfig(t, "bogus: 1\n"))
		require.Error(t, err)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	})

	t.Run("output equals data", func(t *testing.T) {
		_, err := Load(writeConfig(t, "data:\n  dir: same\noutput:\n  dir: ./same\n"))
		require.Error(t, err)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	})

	t.Run("token auth without token", func(t *testing.T) {
		_, err := Load(writeConfig(t, "data:\n  repository:\n    url: https://x/y.git\n    auth:\n      type: token\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "token")
	})

	t.Run("bad cron", func(t *testing.T) {
		_, err := Load(writeConfig(t, "schedule:\n  cron: \"@every\"\n"))
		require.Error(t, err)
	})
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framedoc.yaml")

	require.NoError(t, Init(path, false))
	err := Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
	require.NoError(t, Init(path, true))

	t.Setenv("FRAMEDOC_GIT_TOKEN", "secret")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "docs", cfg.Output.Dir)
	assert.Equal(t, "secret", cfg.Data.Repository.Auth.Token)
}

func TestLogLevelSlog(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, NormalizeLogLevel(" Debug").Slog())
	assert.Equal(t, slog.LevelWarn, NormalizeLogLevel("warning").Slog())
	assert.Equal(t, slog.LevelError, NormalizeLogLevel("error").Slog())
	assert.Equal(t, slog.LevelInfo, NormalizeLogLevel("???").Slog())
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("JSON"))
}

func TestCharacterDir(t *testing.T) {
	d := DataConfig{Dir: "data"}
	assert.Equal(t, "data", d.CharacterDir())

	d.Repository = &RepositoryConfig{URL: "https://x/y.git", Path: "chars/v2"}
	assert.Equal(t, filepath.Join("data", "chars", "v2"), d.CharacterDir())
}

func TestLoadRepositoryRetry(t *testing.T) {
	path := writeConfig(t, `
data:
  repository:
    url: https://example.com/frames.git
    retry:
      backoff: Exponential
      initial: 2s
      max: 1m
      max_retries: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	retry := cfg.Data.Repository.Retry
	assert.Equal(t, RetryBackoffExponential, retry.Backoff)
	assert.Equal(t, 2*time.Second, retry.Initial)
	assert.Equal(t, time.Minute, retry.Max)
	require.NotNil(t, retry.MaxRetries)
	assert.Equal(t, 4, *retry.MaxRetries)

	cfg, err = Load(writeConfig(t, "data:\n  repository:\n    url: https://example.com/frames.git\n    retry:\n      backoff: sometimes\n"))
	require.NoError(t, err)
	assert.Equal(t, RetryBackoffLinear, cfg.Data.Repository.Retry.Backoff)
	assert.NotEmpty(t, cfg.Warnings)
}
