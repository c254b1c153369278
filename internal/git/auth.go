package git

import (
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/apiref/internal/config"
)

// defaultTokenUser is the username forges accept alongside a personal token.
const defaultTokenUser = "token"

// authFor returns HTTP basic credentials for cfg, or nil for anonymous access.
func authFor(cfg *config.AuthConfig) transport.AuthMethod {
	if cfg == nil || cfg.Token == "" {
		return nil
	}
	user := cfg.Username
	if user == "" {
		user = defaultTokenUser
	}
	return &http.BasicAuth{Username: user, Password: cfg.Token}
}
