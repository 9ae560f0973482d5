package config

import (
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
)

// Validate checks a loaded configuration.
func Validate(cfg *Config) error {
	if filepath.Clean(cfg.Output.Dir) == filepath.Clean(cfg.Data.Dir) {
		return ferrors.ValidationError("output.dir must differ from data.dir").
			WithContext("dir", cfg.Output.Dir).Build()
	}
	if repo := cfg.Data.Repository; repo != nil {
		if strings.TrimSpace(repo.URL) == "" {
			return ferrors.ValidationError("data.repository.url is required when a repository is configured").Build()
		}
		if strings.Contains(repo.Path, "..") {
			return ferrors.ValidationError("data.repository.path must stay inside the repository").
				WithContext("path", repo.Path).Build()
		}
		if err := validateAuth(repo.Auth); err != nil {
			return err
		}
	}
	if fields := strings.Fields(cfg.Schedule.Cron); len(fields) < 5 || len(fields) > 6 {
		return ferrors.ValidationError("schedule.cron must have 5 or 6 fields").
			WithContext("cron", cfg.Schedule.Cron).Build()
	}
	return nil
}

func validateAuth(auth *AuthConfig) error {
	if auth == nil {
		return nil
	}
	switch auth.Type {
	case AuthToken:
		if auth.Token == "" {
			return ferrors.ValidationError("token auth requires data.repository.auth.token").Build()
		}
	case AuthBasic:
		if auth.Username == "" || auth.Password == "" {
			return ferrors.ValidationError("basic auth requires username and password").Build()
		}
	case AuthSSH:
		if auth.KeyPath == "" {
			return ferrors.ValidationError("ssh auth requires data.repository.auth.key_path").Build()
		}
	}
	return nil
}
