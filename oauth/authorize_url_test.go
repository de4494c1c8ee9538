package oauth

import (
	"net/url"
	"testing"
)

func TestBuildAuthorizeURL(t *testing.T) {
	cfg := Config{
		ClientID:     "client-123",
		RedirectURI:  "xcloneapp://",
		AuthorizeURL: "https://auth.example/authorize",
	}
	state := CSRFState{Value: "state-xyz"}
	pkce := PKCEChallenge{Verifier: "verifier", Challenge: "challenge-abc", Method: MethodS256}

	raw := cfg.BuildAuthorizeURL(state, pkce, ReadTimelineOffline)
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q): %v", raw, err)
	}
	if got := u.Scheme + "://" + u.Host + u.Path; got != "https://auth.example/authorize" {
		t.Errorf("base = %q", got)
	}

	q := u.Query()
	want := map[string]string{
		"response_type":         "code",
		"client_id":             "client-123",
		"redirect_uri":          "xcloneapp://",
		"state":                 "state-xyz",
		"code_challenge":        "challenge-abc",
		"code_challenge_method": "S256",
		"scope":                 "tweet.read users.read offline.access",
	}
	for key, wantVal := range want {
		if got := q.Get(key); got != wantVal {
			t.Errorf("query %s = %q, want %q", key, got, wantVal)
		}
	}
	if q.Has("code_verifier") {
		t.Error("authorize URL must not carry the code verifier")
	}
}

func TestScopesString(t *testing.T) {
	tests := []struct {
		name   string
		scopes Scopes
		want   string
	}{
		{"empty", Scopes{}, ""},
		{"single", Scopes{ScopeTweetRead}, "tweet.read"},
		{"read timeline", ReadTimeline, "tweet.read users.read"},
		{"offline", ReadTimelineOffline, "tweet.read users.read offline.access"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scopes.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	var cfg Config
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() on empty config expected error")
	}
	cfg.ClientID = "id"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Valid config rejected: %v", err)
	}
}

func TestConfigNormalizeFillsDefaults(t *testing.T) {
	cfg := Config{ClientID: "id"}
	cfg.Normalize()
	if cfg.AuthorizeURL == "" || cfg.TokenURL == "" || cfg.RevokeURL == "" {
		t.Error("Normalize left endpoint defaults empty")
	}
	if cfg.RedirectURI == "" {
		t.Error("Normalize left redirect URI empty")
	}
	if cfg.HTTPClient == nil || cfg.Logger == nil {
		t.Error("Normalize left client/logger nil")
	}
}
