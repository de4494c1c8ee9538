package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(serverURL string) Config {
	return Config{
		ClientID:    "client-123",
		RedirectURI: "xcloneapp://",
		TokenURL:    serverURL + "/oauth2/token",
		RevokeURL:   serverURL + "/oauth2/revoke",
	}
}

const tokenResponseJSON = `{
	"access_token": "at-1",
	"refresh_token": "rt-1",
	"expires_in": 7200,
	"token_type": "bearer"
}`

func TestExchangeAuthorizationCode(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		gotForm = r.PostForm
		w.Write([]byte(tokenResponseJSON))
	}))
	defer srv.Close()

	tc, err := NewTokenClient(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewTokenClient: %v", err)
	}

	before := time.Now()
	creds, err := tc.ExchangeAuthorizationCode(context.Background(), "auth-code", "the-verifier")
	if err != nil {
		t.Fatalf("ExchangeAuthorizationCode: %v", err)
	}

	want := url.Values{
		"code":          {"auth-code"},
		"client_id":     {"client-123"},
		"redirect_uri":  {"xcloneapp://"},
		"grant_type":    {"authorization_code"},
		"code_verifier": {"the-verifier"},
	}
	for key := range want {
		if gotForm.Get(key) != want.Get(key) {
			t.Errorf("form %s = %q, want %q", key, gotForm.Get(key), want.Get(key))
		}
	}

	if creds.AccessToken != "at-1" || creds.RefreshToken != "rt-1" || creds.TokenType != "bearer" {
		t.Errorf("credentials = %+v", creds)
	}
	// expiresAt is stamped at decode time: now + expires_in, small tolerance.
	wantExpiry := before.Add(7200 * time.Second)
	if diff := creds.ExpiresAt.Sub(wantExpiry); diff < 0 || diff > 5*time.Second {
		t.Errorf("ExpiresAt = %v, want about %v", creds.ExpiresAt, wantExpiry)
	}
}

func TestRefreshGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("refresh_token"); got != "rt-old" {
			t.Errorf("refresh_token = %q", got)
		}
		if r.PostForm.Has("redirect_uri") {
			t.Error("refresh grant must not carry redirect_uri")
		}
		w.Write([]byte(tokenResponseJSON))
	}))
	defer srv.Close()

	tc, _ := NewTokenClient(testConfig(srv.URL))
	creds, err := tc.Refresh(context.Background(), "rt-old")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if creds.AccessToken != "at-1" {
		t.Errorf("AccessToken = %q", creds.AccessToken)
	}
}

func TestTokenEndpointErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "http status error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			check: func(t *testing.T, err error) {
				var httpErr *HTTPError
				if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
					t.Errorf("error = %v, want HTTPError 400", err)
				}
			},
		},
		{
			name: "empty response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				// 200 with no body
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrEmptyResponse) {
					t.Errorf("error = %v, want ErrEmptyResponse", err)
				}
			},
		},
		{
			name: "decode error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
			check: func(t *testing.T, err error) {
				var decErr *DecodeError
				if !errors.As(err, &decErr) {
					t.Errorf("error = %v, want DecodeError", err)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			tc, _ := NewTokenClient(testConfig(srv.URL))
			_, err := tc.Refresh(context.Background(), "rt")
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestTransportErrorWrapped(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1") // nothing listening
	tc, _ := NewTokenClient(cfg)
	_, err := tc.Refresh(context.Background(), "rt")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Err == nil {
		t.Errorf("error = %v, want transport HTTPError", err)
	}
}

func TestConcurrentRefreshesCoalesce(t *testing.T) {
	var requests atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release
		w.Write([]byte(tokenResponseJSON))
	}))
	defer srv.Close()

	tc, _ := NewTokenClient(testConfig(srv.URL))

	const callers = 4
	creds := make([]*TokenCredentials, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			creds[i], _ = tc.Refresh(context.Background(), "rt")
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := requests.Load(); n != 1 {
		t.Errorf("token endpoint requests = %d, want 1", n)
	}
	for i := 1; i < callers; i++ {
		if creds[i] != creds[0] {
			t.Errorf("caller %d received a different result instance", i)
		}
	}
}

func TestRevoke(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotForm = r.PostForm
	}))
	defer srv.Close()

	tc, _ := NewTokenClient(testConfig(srv.URL))
	if err := tc.Revoke(context.Background(), "at-1", "access_token"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if gotForm.Get("token") != "at-1" || gotForm.Get("token_type_hint") != "access_token" {
		t.Errorf("form = %v", gotForm)
	}
}
