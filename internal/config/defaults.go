package config

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/framedoc/internal/foundation/normalization"
)

// Defaults applied to unset fields.
const (
	DefaultDataDir       = "data/character"
	DefaultOutputDir     = "docs"
	DefaultEventsSubject = "framedoc.pages"
	DefaultEventsTimeout = 5 * time.Second
	DefaultCron          = "0 */6 * * *"
	DefaultDebounce      = 300 * time.Millisecond
	DefaultBranch        = "main"
)

func normalize(cfg *Config) {
	cfg.Logging.Level = normalizeField(cfg, logLevelNormalizer, "logging.level", string(cfg.Logging.Level))
	cfg.Logging.Format = normalizeField(cfg, logFormatNormalizer, "logging.format", string(cfg.Logging.Format))

	if repo := cfg.Data.Repository; repo != nil {
		if repo.Auth != nil {
			repo.Auth.Type = normalizeField(cfg, authTypeNormalizer, "data.repository.auth.type", string(repo.Auth.Type))
		}
		if repo.Retry.Backoff != "" {
			repo.Retry.Backoff = normalizeField(cfg, retryBackoffNormalizer, "data.repository.retry.backoff", string(repo.Retry.Backoff))
		}
	}
}

func normalizeField[T comparable](cfg *Config, n *normalization.Normalizer[T], field, raw string) T {
	if raw != "" && !n.Valid(raw) {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown %s %q, valid options: %v", field, raw, n.ValidKeys()))
	}
	res := n.NormalizeField(field, raw)
	if res.Warning != "" {
		cfg.Warnings = append(cfg.Warnings, res.Warning)
	}
	return res.Value
}

func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = DefaultDataDir
	}
	if repo := cfg.Data.Repository; repo != nil && repo.Branch == "" {
		repo.Branch = DefaultBranch
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if cfg.Events.NATSURL != "" {
		if cfg.Events.Subject == "" {
			cfg.Events.Subject = DefaultEventsSubject
		}
		if cfg.Events.Timeout == 0 {
			cfg.Events.Timeout = DefaultEventsTimeout
		}
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = DefaultCron
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultDebounce
	}
}
