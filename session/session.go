// Package session owns the authenticated user session: it is the sole
// authority for whether the caller is currently authenticated and what the
// valid access token and user are.
//
// The Manager is a facade over secure token storage, the token refresh
// grant, and identity resolution. Tokens are refreshed transparently when
// the cached session goes stale; every stateful operation is single-flight,
// so concurrent callers coalesce onto one execution rather than racing a
// hot refresh token.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/xcloneapp/xclient-go/identity"
	"github.com/xcloneapp/xclient-go/internal/flight"
	"github.com/xcloneapp/xclient-go/internal/logctx"
	"github.com/xcloneapp/xclient-go/oauth"
	"github.com/xcloneapp/xclient-go/tokenstore"
)

const (
	defaultAccessTokenID  = "x.accessToken"
	defaultRefreshTokenID = "x.refreshToken"

	authStatusKey    = "userAuthenticated"
	sessionExpiryKey = "sessionExpiry"

	// defaultExpiryThreshold is the safety margin against clock skew and
	// request latency: a token within this window of expiry is treated as
	// already expired.
	defaultExpiryThreshold = 60 * time.Second
)

// timeNow is stubbed in tests.
var timeNow = time.Now

// TokenRefresher exchanges a refresh token for fresh credentials. Satisfied
// by *oauth.TokenClient.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth.TokenCredentials, error)
}

// IdentityResolver resolves an access token to a user profile. Satisfied by
// *identity.Client.
type IdentityResolver interface {
	Lookup(ctx context.Context, accessToken string) (*identity.UserProfile, error)
}

// SessionContext pairs the valid access token with the authenticated user.
// Everything needed to make an authenticated API call.
type SessionContext struct {
	AccessToken string
	User        *identity.UserProfile
}

// Config wires a Manager's collaborators.
type Config struct {
	Store    tokenstore.Store
	Prefs    Prefs
	Tokens   TokenRefresher
	Identity IdentityResolver

	Logger *slog.Logger

	// ExpiryThreshold overrides the 60s expiry safety margin.
	ExpiryThreshold time.Duration

	// Token identifiers in the secure store. Defaults preserve the
	// identifiers established clients already have credentials under.
	AccessTokenID  string
	RefreshTokenID string
}

// Manager is the user session facade. Safe for concurrent use.
type Manager struct {
	cfg Config

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
	user        *identity.UserProfile

	commits  flight.Group[struct{}]
	contexts flight.Group[*SessionContext]
}

// New creates a Manager.
func New(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, errors.New("session: token store required")
	}
	if cfg.Prefs == nil {
		return nil, errors.New("session: prefs required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("session: token refresher required")
	}
	if cfg.Identity == nil {
		return nil, errors.New("session: identity resolver required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Logger = slog.New(logctx.Handler{Handler: cfg.Logger.Handler()})
	if cfg.ExpiryThreshold == 0 {
		cfg.ExpiryThreshold = defaultExpiryThreshold
	}
	if cfg.AccessTokenID == "" {
		cfg.AccessTokenID = defaultAccessTokenID
	}
	if cfg.RefreshTokenID == "" {
		cfg.RefreshTokenID = defaultRefreshTokenID
	}
	return &Manager{cfg: cfg}, nil
}

// DidAuthenticate reports whether a login has ever been committed on this
// install. A fast local read; it says nothing about token validity.
func (m *Manager) DidAuthenticate() bool {
	return m.cfg.Prefs.Bool(authStatusKey)
}

// HasActiveSession reports whether an access token is cached in memory and
// not within the expiry threshold.
func (m *Manager) HasActiveSession() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasActiveSessionLocked()
}

func (m *Manager) hasActiveSessionLocked() bool {
	if m.accessToken == "" || m.expiresAt.IsZero() {
		return false
	}
	return timeNow().Before(m.expiresAt.Add(-m.cfg.ExpiryThreshold))
}

// SetCurrentSession commits new token credentials: both tokens to the
// secure store (access first, then refresh; the first failed write aborts
// the commit without touching in-memory state or the auth flag), then the
// auth flag and expiry to durable prefs, then in-memory state.
//
// The cached user is cleared on every commit: fresh credentials may belong
// to a different grant, so identity is re-derived lazily on next access.
//
// Concurrent calls coalesce onto the first caller's commit.
func (m *Manager) SetCurrentSession(ctx context.Context, creds *oauth.TokenCredentials) error {
	_, err := m.commits.Do("commit", func() (struct{}, error) {
		if err := m.cfg.Store.Write(ctx, m.cfg.AccessTokenID, creds.AccessToken); err != nil {
			return struct{}{}, &SecureStorageError{Err: err}
		}
		if err := m.cfg.Store.Write(ctx, m.cfg.RefreshTokenID, creds.RefreshToken); err != nil {
			return struct{}{}, &SecureStorageError{Err: err}
		}

		m.cfg.Prefs.SetBool(authStatusKey, true)
		m.cfg.Prefs.SetInt64(sessionExpiryKey, creds.ExpiresAt.Unix())

		m.mu.Lock()
		m.accessToken = creds.AccessToken
		m.expiresAt = creds.ExpiresAt
		m.user = nil
		m.mu.Unlock()

		m.cfg.Logger.InfoContext(ctx, "session credentials committed", "credentials", *creds)
		return struct{}{}, nil
	})
	return err
}

// GetSessionContext returns the valid access token and the authenticated
// user, from cache when the session is active, otherwise refreshing tokens
// and re-resolving identity as needed. Concurrent calls coalesce onto one
// resolution.
func (m *Manager) GetSessionContext(ctx context.Context) (*SessionContext, error) {
	return m.contexts.Do("context", func() (*SessionContext, error) {
		m.mu.Lock()
		if m.user != nil && m.hasActiveSessionLocked() {
			sc := &SessionContext{AccessToken: m.accessToken, User: m.user}
			m.mu.Unlock()
			return sc, nil
		}
		m.mu.Unlock()

		token, err := m.validAccessToken(ctx)
		if err != nil {
			return nil, err
		}

		lctx := logctx.WithSession(ctx, &logctx.SessionData{ExpiresAt: m.expiry()})
		user, err := m.cfg.Identity.Lookup(lctx, token)
		if err != nil {
			return nil, &IdentityFetchError{Err: err}
		}

		m.mu.Lock()
		m.user = user
		m.mu.Unlock()

		m.cfg.Logger.DebugContext(lctx, "session context resolved", "user_id", user.ID)
		return &SessionContext{AccessToken: token, User: user}, nil
	})
}

// validAccessToken returns a token that is safe to present: the in-memory
// one when active, the persisted one when a cold start finds it still
// active, and otherwise one minted through the refresh grant. Failure is
// terminal for the call; it means "not authenticated", not "retry".
func (m *Manager) validAccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.accessToken != "" {
		if m.hasActiveSessionLocked() {
			token := m.accessToken
			m.mu.Unlock()
			return token, nil
		}
		m.mu.Unlock()
		return m.refreshSession(ctx)
	}
	m.mu.Unlock()

	// Cold start: adopt persisted credentials if they are still active.
	stored, err := m.cfg.Store.Read(ctx, m.cfg.AccessTokenID)
	switch {
	case err == nil:
		expiresAt := time.Unix(m.cfg.Prefs.Int64(sessionExpiryKey), 0)
		if timeNow().Before(expiresAt.Add(-m.cfg.ExpiryThreshold)) {
			m.mu.Lock()
			m.accessToken = stored
			m.expiresAt = expiresAt
			m.mu.Unlock()
			m.cfg.Logger.DebugContext(ctx, "adopted persisted session", "expires_at", expiresAt)
			return stored, nil
		}
		// Persisted token expired (or its expiry is missing/garbage).
		return m.refreshSession(ctx)
	case errors.Is(err, tokenstore.ErrNotFound):
		return m.refreshSession(ctx)
	default:
		return "", &SecureStorageError{Err: err}
	}
}

// refreshSession exchanges the persisted refresh token for new credentials
// and commits them.
func (m *Manager) refreshSession(ctx context.Context) (string, error) {
	refreshToken, err := m.cfg.Store.Read(ctx, m.cfg.RefreshTokenID)
	if err != nil {
		// Absent refresh token means "not authenticated"; no network call.
		return "", &SecureStorageError{Err: err}
	}

	creds, err := m.cfg.Tokens.Refresh(ctx, refreshToken)
	if err != nil {
		return "", &RefreshTokenFetchError{Err: err}
	}

	if err := m.SetCurrentSession(ctx, creds); err != nil {
		return "", err
	}

	// The commit may have coalesced onto another caller's in-flight commit,
	// in which case that caller's credentials are the ones persisted. Return
	// the committed token so the session context never disagrees with the
	// store.
	m.mu.Lock()
	token := m.accessToken
	expiresAt := m.expiresAt
	m.mu.Unlock()
	m.cfg.Logger.InfoContext(ctx, "session refreshed", "expires_at", expiresAt)
	return token, nil
}

func (m *Manager) expiry() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiresAt
}
