package oauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/xcloneapp/xclient-go/internal/flight"
)

// TokenClient performs the token endpoint calls: authorization-code
// exchange, refresh, and revocation. Each logical operation runs at most one
// HTTP request at a time; concurrent callers of the same operation are
// coalesced onto the first caller's result. The client performs no retries;
// a failed exchange is the caller's to handle.
type TokenClient struct {
	cfg Config

	exchanges flight.Group[*TokenCredentials]
	revokes   flight.Group[struct{}]
}

// NewTokenClient creates a TokenClient. cfg is normalized and validated.
func NewTokenClient(cfg Config) (*TokenClient, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TokenClient{cfg: cfg}, nil
}

// ExchangeAuthorizationCode trades an authorization code plus its PKCE
// verifier for token credentials.
func (tc *TokenClient) ExchangeAuthorizationCode(ctx context.Context, code, codeVerifier string) (*TokenCredentials, error) {
	return tc.exchanges.Do("authorization_code", func() (*TokenCredentials, error) {
		tc.cfg.Logger.DebugContext(ctx, "exchanging authorization code for token credentials")
		return tc.postTokenForm(ctx, url.Values{
			"code":          {code},
			"client_id":     {tc.cfg.ClientID},
			"redirect_uri":  {tc.cfg.RedirectURI},
			"grant_type":    {"authorization_code"},
			"code_verifier": {codeVerifier},
		})
	})
}

// Refresh trades a refresh token for fresh token credentials.
func (tc *TokenClient) Refresh(ctx context.Context, refreshToken string) (*TokenCredentials, error) {
	return tc.exchanges.Do("refresh_token", func() (*TokenCredentials, error) {
		tc.cfg.Logger.DebugContext(ctx, "refreshing token credentials")
		return tc.postTokenForm(ctx, url.Values{
			"refresh_token": {refreshToken},
			"client_id":     {tc.cfg.ClientID},
			"grant_type":    {"refresh_token"},
		})
	})
}

// Revoke invalidates a token server-side. hint is "access_token" or
// "refresh_token", or empty to let the server detect the type.
func (tc *TokenClient) Revoke(ctx context.Context, token, hint string) error {
	_, err := tc.revokes.Do("revoke", func() (struct{}, error) {
		form := url.Values{
			"token":     {token},
			"client_id": {tc.cfg.ClientID},
		}
		if hint != "" {
			form.Set("token_type_hint", hint)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, tc.cfg.RevokeURL, strings.NewReader(form.Encode()))
		if err != nil {
			return struct{}{}, &HTTPError{Err: err}
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := tc.cfg.HTTPClient.Do(req)
		if err != nil {
			return struct{}{}, &HTTPError{Err: err}
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode != http.StatusOK {
			return struct{}{}, &HTTPError{StatusCode: resp.StatusCode}
		}
		return struct{}{}, nil
	})
	return err
}

// postTokenForm executes one token endpoint POST and decodes the response.
func (tc *TokenClient) postTokenForm(ctx context.Context, form url.Values) (*TokenCredentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tc.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &HTTPError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tc.cfg.HTTPClient.Do(req)
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

	var creds TokenCredentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &creds, nil
}
