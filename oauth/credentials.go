package oauth

import (
	"encoding/json"
	"log/slog"
	"time"
)

// timeNow is stubbed in tests.
var timeNow = time.Now

// TokenCredentials is the decoded token endpoint response. ExpiresAt is
// computed at decode time from expires_in.
//
// Treat this as a short-lived in-memory value: never log it or write it to
// disk as a whole. The session package persists the two token strings and
// the expiry through its secure store.
type TokenCredentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds, as received on the wire
	ExpiresAt    time.Time
	TokenType    string
}

// UnmarshalJSON decodes the wire form and stamps ExpiresAt relative to the
// current clock.
func (c *TokenCredentials) UnmarshalJSON(data []byte) error {
	var wire struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
		TokenType    string `json:"token_type"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	c.AccessToken = wire.AccessToken
	c.RefreshToken = wire.RefreshToken
	c.ExpiresIn = wire.ExpiresIn
	c.ExpiresAt = timeNow().Add(time.Duration(wire.ExpiresIn) * time.Second)
	c.TokenType = wire.TokenType
	return nil
}

// LogValue keeps token material out of log output.
func (c TokenCredentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("token_type", c.TokenType),
		slog.Time("expires_at", c.ExpiresAt),
	)
}
