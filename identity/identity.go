// Package identity resolves an access token to the authenticated user's
// profile via the users/me endpoint. Most callers should go through the
// session package, which caches the resolved profile against the active
// token.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/xcloneapp/xclient-go/internal/flight"
)

const defaultUserInfoURL = "https://api.x.com/2/users/me"

// ErrEmptyResponse indicates the identity endpoint returned no body.
var ErrEmptyResponse = errors.New("identity: empty response")

// DecodeError indicates the identity response could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("identity: decode response: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// HTTPError indicates the identity call failed at the transport layer or
// returned a non-success status.
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity: request: %v", e.Err)
	}
	return fmt.Sprintf("identity: endpoint returned status %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// UserProfile is the authenticated user. Immutable once fetched.
type UserProfile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// Config for the identity client.
type Config struct {
	// UserInfoURL overrides the users/me endpoint, primarily for tests.
	UserInfoURL string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client fetches the current user for an access token. Concurrent lookups
// are coalesced onto a single request.
type Client struct {
	cfg     Config
	lookups flight.Group[*UserProfile]
}

// NewClient creates an identity Client.
func NewClient(cfg Config) *Client {
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultUserInfoURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{cfg: cfg}
}

// Lookup resolves accessToken to the user it belongs to.
func (c *Client) Lookup(ctx context.Context, accessToken string) (*UserProfile, error) {
	return c.lookups.Do("lookup", func() (*UserProfile, error) {
		c.cfg.Logger.DebugContext(ctx, "resolving authenticated user identity")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserInfoURL, nil)
		if err != nil {
			return nil, &HTTPError{Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)

		resp, err := c.cfg.HTTPClient.Do(req)
		if err != nil {
			return nil, &HTTPError{Err: err}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &HTTPError{Err: err}
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &HTTPError{StatusCode: resp.StatusCode}
		}
		if len(body) == 0 {
			return nil, ErrEmptyResponse
		}

		var envelope struct {
			Data UserProfile `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, &DecodeError{Err: err}
		}
		if envelope.Data.ID == "" {
			return nil, &DecodeError{Err: errors.New("missing user id")}
		}
		return &envelope.Data, nil
	})
}
