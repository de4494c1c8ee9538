package oauth

import "net/url"

// BuildAuthorizeURL builds the authorization URL for one login attempt from
// fresh PKCE and CSRF values. Pure; no I/O. Call Normalize on the Config
// first so endpoint defaults are in place.
func (c Config) BuildAuthorizeURL(state CSRFState, pkce PKCEChallenge, scopes Scopes) string {
	base := c.AuthorizeURL
	if base == "" {
		base = defaultAuthorizeURL
	}
	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {c.ClientID},
		"redirect_uri":          {c.RedirectURI},
		"state":                 {state.Value},
		"code_challenge":        {pkce.Challenge},
		"code_challenge_method": {string(pkce.Method)},
		"scope":                 {scopes.String()},
	}
	return base + "?" + params.Encode()
}
