package source

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"git.home.luguber.info/inful/framedoc/internal/config"
	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
)

// Auth returns a go-git AuthMethod for the given configuration. A nil config
// or type none yields nil (anonymous access).
func Auth(auth *config.AuthConfig) (transport.AuthMethod, error) {
	if auth == nil {
		return nil, nil
	}
	switch auth.Type {
	case config.AuthNone, "":
		return nil, nil

	case config.AuthSSH:
		keyPath := auth.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		}
		publicKeys, err := ssh.NewPublicKeysFromFile("git", keyPath, auth.Password)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to load SSH key").
				WithContext("path", keyPath).Build()
		}
		return publicKeys, nil

	case config.AuthToken:
		if auth.Token == "" {
			return nil, ferrors.ConfigError("token authentication requires a token").Build()
		}
		// Most Git hosting services accept "token" as the username for token auth.
		return &http.BasicAuth{Username: "token", Password: auth.Token}, nil

	case config.AuthBasic:
		if auth.Username == "" || auth.Password == "" {
			return nil, ferrors.ConfigError("basic authentication requires username and password").Build()
		}
		return &http.BasicAuth{Username: auth.Username, Password: auth.Password}, nil

	default:
		return nil, ferrors.ConfigError("unsupported authentication type").WithContext("type", string(auth.Type)).Build()
	}
}
