// Package config loads framedoc's YAML configuration.
//
// Loading order: .env files, the YAML file with ${VAR} expansion, FRAMEDOC_*
// environment overrides, normalization, defaults, validation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
)

// CurrentVersion is the configuration format version written by Init.
const CurrentVersion = "1"

// Config represents the application configuration.
type Config struct {
	Version   string          `yaml:"version"`
	Data      DataConfig      `yaml:"data" envPrefix:"DATA_"`
	Templates TemplatesConfig `yaml:"templates" envPrefix:"TEMPLATES_"`
	Output    OutputConfig    `yaml:"output" envPrefix:"OUTPUT_"`
	Render    RenderConfig    `yaml:"render" envPrefix:"RENDER_"`
	Logging   LoggingConfig   `yaml:"logging" envPrefix:"LOG_"`
	Metrics   MetricsConfig   `yaml:"metrics" envPrefix:"METRICS_"`
	Events    EventsConfig    `yaml:"events" envPrefix:"EVENTS_"`
	History   HistoryConfig   `yaml:"history" envPrefix:"HISTORY_"`
	Schedule  ScheduleConfig  `yaml:"schedule" envPrefix:"SCHEDULE_"`
	Watch     WatchConfig     `yaml:"watch" envPrefix:"WATCH_"`

	// Warnings collects normalization notices produced while loading.
	Warnings []string `yaml:"-"`
}

// DataConfig locates the character TOML files.
type DataConfig struct {
	Dir        string            `yaml:"dir" env:"DIR"`
	Repository *RepositoryConfig `yaml:"repository,omitempty"`
}

// CharacterDir is the directory holding the TOML files: Dir, or the
// configured subdirectory of the repository checkout.
func (d DataConfig) CharacterDir() string {
	if d.Repository != nil && d.Repository.Path != "" {
		return filepath.Join(d.Dir, filepath.FromSlash(d.Repository.Path))
	}
	return d.Dir
}

// RepositoryConfig describes an optional git repository holding the data.
// It is cloned into Dir; Path selects a subdirectory with the TOML files.
type RepositoryConfig struct {
	URL    string      `yaml:"url"`
	Branch string      `yaml:"branch,omitempty"`
	Path   string      `yaml:"path,omitempty"`
	Auth   *AuthConfig `yaml:"auth,omitempty"`
	Retry  RetryConfig `yaml:"retry,omitempty"`
}

// AuthConfig represents repository authentication.
type AuthConfig struct {
	Type     AuthType `yaml:"type"`
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	Token    string   `yaml:"token,omitempty"`
	KeyPath  string   `yaml:"key_path,omitempty"`
}

// TemplatesConfig points at an optional template override directory.
type TemplatesConfig struct {
	Dir string `yaml:"dir,omitempty" env:"DIR"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Dir string `yaml:"dir" env:"DIR"`
}

// RenderConfig toggles optional render stages.
type RenderConfig struct {
	Markdown    bool `yaml:"markdown" env:"MARKDOWN"`
	VerifyLinks bool `yaml:"verify_links" env:"VERIFY_LINKS"`
}

// LoggingConfig selects the log level and handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level" env:"LEVEL"`
	Format LogFormat `yaml:"format" env:"FORMAT"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty" env:"TEXTFILE"`
}

// EventsConfig controls page events published to NATS. An empty URL
// disables publishing.
type EventsConfig struct {
	NATSURL string        `yaml:"nats_url,omitempty" env:"NATS_URL"`
	Subject string        `yaml:"subject,omitempty" env:"SUBJECT"`
	Timeout time.Duration `yaml:"timeout,omitempty" env:"TIMEOUT"`
	// JetStream publishes through a JetStream context and waits for the ack.
	JetStream bool `yaml:"jetstream,omitempty" env:"JETSTREAM"`
}

// HistoryConfig controls the build history database. An empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty" env:"PATH"`
}

// ScheduleConfig drives the daemon command.
type ScheduleConfig struct {
	Cron string `yaml:"cron" env:"CRON"`
}

// WatchConfig drives the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty" env:"DEBOUNCE"`
}

// Load reads the configuration at path. An empty path yields the defaults
// (still subject to environment overrides).
func Load(path string) (*Config, error) {
	loadEnvFile()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user supplied config path
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, ferrors.ConfigError("configuration file not found").WithContext("path", path).Build()
			}
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
				WithContext("path", path).Fatal().Build()
		}
		if err := decode(data, cfg); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse config file").
				WithContext("path", path).Fatal().Build()
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid environment override").Fatal().Build()
	}
	normalize(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode expands ${VAR} references and decodes strictly.
func decode(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewBufferString(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	example := Config{
		Version: CurrentVersion,
		Data: DataConfig{
			Dir: "data/character",
			Repository: &RepositoryConfig{
				URL:    "https://github.com/example/framedata.git",
				Branch: "main",
				Path:   "character",
				Auth:   &AuthConfig{Type: AuthToken, Token: "${FRAMEDOC_GIT_TOKEN}"},
			},
		},
		Templates: TemplatesConfig{Dir: "templates"},
		Output:    OutputConfig{Dir: "docs"},
		Render:    RenderConfig{Markdown: false, VerifyLinks: true},
		Logging:   LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		History:   HistoryConfig{Path: ".framedoc/history.db"},
		Schedule:  ScheduleConfig{Cron: "0 */6 * * *"},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).Build()
	}
	return nil
}
