// Package oauth implements the client half of the X API OAuth 2.0
// authorization-code flow with PKCE: per-attempt challenge and CSRF state
// generation, authorization URL construction, and the token endpoint calls
// (code exchange, refresh, revocation).
//
// The package performs no retries and no token storage; session lifecycle is
// the session package's job.
package oauth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joeshaw/envdecode"
)

const (
	defaultAuthorizeURL = "https://x.com/i/oauth2/authorize"
	defaultTokenURL     = "https://api.x.com/2/oauth2/token"
	defaultRevokeURL    = "https://api.x.com/2/oauth2/revoke"
	defaultRedirectURI  = "xcloneapp://"
)

// Config describes the OAuth client application. A zero value is invalid;
// populate ClientID and call Validate, or construct via NewConfigFromEnv.
type Config struct {
	// ClientID is the public OAuth client identifier. ENV: X_CLIENT_ID
	ClientID string `env:"X_CLIENT_ID"`
	// RedirectURI is the app-private callback. ENV: X_REDIRECT_URI
	RedirectURI string `env:"X_REDIRECT_URI,default=xcloneapp://"`

	// Endpoint overrides, primarily for tests.
	AuthorizeURL string `env:"X_AUTHORIZE_URL"`
	TokenURL     string `env:"X_TOKEN_URL"`
	RevokeURL    string `env:"X_REVOKE_URL"`

	// HTTPClient overrides http.DefaultClient for token endpoint calls.
	HTTPClient *http.Client
	// Logger for structured logging; nil means slog.Default(). Token values
	// are never logged.
	Logger *slog.Logger
}

// Normalize fills endpoint defaults in place.
func (c *Config) Normalize() {
	if c.AuthorizeURL == "" {
		c.AuthorizeURL = defaultAuthorizeURL
	}
	if c.TokenURL == "" {
		c.TokenURL = defaultTokenURL
	}
	if c.RevokeURL == "" {
		c.RevokeURL = defaultRevokeURL
	}
	if c.RedirectURI == "" {
		c.RedirectURI = defaultRedirectURI
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Validate returns an error if required invariants are not met.
func (c Config) Validate() error {
	if c.ClientID == "" {
		return errors.New("oauth: client id required")
	}
	return nil
}

// NewConfigFromEnv builds a Config using envdecode to populate fields.
func NewConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("oauth: decode env: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
