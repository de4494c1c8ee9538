// Package authflow drives one interactive login attempt end to end: it
// builds the authorization URL from fresh PKCE and anti-forgery values,
// hands off to a web authentication surface, validates the redirect
// callback, exchanges the authorization code for token credentials, and
// commits them to the session.
//
// The flow is a strictly linear forward state machine with a cancel/fail
// escape valve from any non-terminal state. Every transition is guarded on
// its expected predecessor, so re-entrant or out-of-order callbacks from a
// superseded attempt are ignored rather than corrupting a live one.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/xcloneapp/xclient-go/internal/logctx"
	"github.com/xcloneapp/xclient-go/oauth"
)

// State identifies where a login attempt is in its lifecycle.
type State string

const (
	StateNone                     State = "none"
	StateAuthorizingUser          State = "authorizing_user"
	StateFetchingTokenCredentials State = "fetching_token_credentials"
	StateSettingTokenCredentials  State = "setting_token_credentials"
	StateSuccess                  State = "authentication_success"
	StateCancelled                State = "authentication_cancelled"
	StateFailed                   State = "authentication_failed"
)

// Terminal reports whether the attempt has reached a final state.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateCancelled || s == StateFailed
}

// ErrCancelled is returned when the user dismisses the web authentication
// surface, when Cancel is called, or when an attempt is superseded by a
// newer call to Authenticate.
var ErrCancelled = errors.New("authflow: authentication cancelled")

// WebAuthenticator presents an authorization URL to the user and returns
// the redirect callback URL received on the app-private scheme. A
// user-dismissed surface returns ErrCancelled (or wraps it).
type WebAuthenticator interface {
	Authorize(ctx context.Context, authorizeURL string, callbackScheme string) (*url.URL, error)
}

// TokenExchanger redeems an authorization code for token credentials.
// Satisfied by *oauth.TokenClient.
type TokenExchanger interface {
	ExchangeAuthorizationCode(ctx context.Context, code, codeVerifier string) (*oauth.TokenCredentials, error)
}

// SessionCommitter persists newly minted credentials as the current
// session. Satisfied by *session.Manager.
type SessionCommitter interface {
	SetCurrentSession(ctx context.Context, creds *oauth.TokenCredentials) error
}

// Delegate observes the outcome of a login attempt. Exactly one of its
// methods is invoked per attempt that reaches a terminal state.
type Delegate interface {
	AuthenticationSucceeded()
	AuthenticationCancelled()
	AuthenticationFailed(err error)
}

// Config wires an Authenticator's collaborators.
type Config struct {
	OAuth   oauth.Config
	Web     WebAuthenticator
	Tokens  TokenExchanger
	Session SessionCommitter

	// Delegate is optional; when nil, outcomes are reported only through
	// Authenticate's return value.
	Delegate Delegate

	Logger *slog.Logger

	// Scopes defaults to the timeline read set with offline access, which
	// is what the refresh grant needs to function.
	Scopes oauth.Scopes

	// Method defaults to S256.
	Method oauth.ChallengeMethod
}

// Authenticator runs one login attempt at a time. Safe for concurrent use;
// a new Authenticate call supersedes any attempt still in flight.
type Authenticator struct {
	cfg Config

	mu        sync.Mutex
	state     State
	attemptID string
	cancel    context.CancelFunc
}

// New creates an Authenticator.
func New(cfg Config) (*Authenticator, error) {
	cfg.OAuth.Normalize()
	if err := cfg.OAuth.Validate(); err != nil {
		return nil, err
	}
	if cfg.Web == nil {
		return nil, errors.New("authflow: web authenticator required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("authflow: token exchanger required")
	}
	if cfg.Session == nil {
		return nil, errors.New("authflow: session committer required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Logger = slog.New(logctx.Handler{Handler: cfg.Logger.Handler()})
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = oauth.ReadTimelineOffline
	}
	if cfg.Method == "" {
		cfg.Method = oauth.MethodS256
	}
	return &Authenticator{cfg: cfg, state: StateNone}, nil
}

// State returns the current attempt state.
func (a *Authenticator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Authenticate runs a full login attempt and blocks until it reaches a
// terminal state. Any attempt still in flight is abandoned first; there is
// always at most one live attempt.
//
// A nil return means the attempt succeeded and the session is now active.
// Cancellation (by the user, by Cancel, or by supersession) returns
// ErrCancelled. All other failures return the attempt-level error that was
// also reported to the delegate.
func (a *Authenticator) Authenticate(ctx context.Context) error {
	attemptID := uuid.NewString()
	pkce := oauth.NewPKCEChallenge(a.cfg.Method)
	csrf := oauth.NewCSRFState()

	actx, cancelAttempt := context.WithCancel(ctx)
	defer cancelAttempt()

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.state = StateAuthorizingUser
	a.attemptID = attemptID
	a.cancel = cancelAttempt
	a.mu.Unlock()

	lctx := logctx.WithAttempt(actx, &logctx.AttemptData{
		AttemptID: attemptID,
		State:     string(StateAuthorizingUser),
	})
	a.cfg.Logger.InfoContext(lctx, "starting authorization",
		"method", string(pkce.Method), "scopes", a.cfg.Scopes.String())

	authorizeURL := a.cfg.OAuth.BuildAuthorizeURL(csrf, pkce, a.cfg.Scopes)
	callback, err := a.cfg.Web.Authorize(actx, authorizeURL, a.callbackScheme())
	if err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			return a.cancelAttemptID(attemptID)
		}
		return a.failAttempt(lctx, attemptID, &AuthorizationError{Err: err})
	}

	code, err := validateCallback(callback, csrf)
	if err != nil {
		return a.failAttempt(lctx, attemptID, err)
	}
	if !a.advance(attemptID, StateAuthorizingUser, StateFetchingTokenCredentials) {
		return ErrCancelled
	}

	creds, err := a.cfg.Tokens.ExchangeAuthorizationCode(actx, code, pkce.Verifier)
	if err != nil {
		return a.failAttempt(lctx, attemptID, &TokenExchangeError{Err: err})
	}
	if !a.advance(attemptID, StateFetchingTokenCredentials, StateSettingTokenCredentials) {
		return ErrCancelled
	}

	if err := a.cfg.Session.SetCurrentSession(actx, creds); err != nil {
		return a.failAttempt(lctx, attemptID, &SessionCommitError{Err: err})
	}
	if !a.advance(attemptID, StateSettingTokenCredentials, StateSuccess) {
		return ErrCancelled
	}

	a.cfg.Logger.InfoContext(lctx, "authentication succeeded")
	if a.cfg.Delegate != nil {
		a.cfg.Delegate.AuthenticationSucceeded()
	}
	return nil
}

// Cancel abandons the attempt in flight, if any. Safe to call at any time
// from any goroutine; a no-op when no attempt has started or the attempt
// already reached a terminal state.
func (a *Authenticator) Cancel() {
	a.mu.Lock()
	if a.state == StateNone || a.state.Terminal() {
		a.mu.Unlock()
		return
	}
	a.state = StateCancelled
	cancel := a.cancel
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if a.cfg.Delegate != nil {
		a.cfg.Delegate.AuthenticationCancelled()
	}
}

// advance fires the expect→next transition for the given attempt; it
// reports false when the attempt was superseded, cancelled, or the machine
// is not in the expected state.
func (a *Authenticator) advance(attemptID string, expect, next State) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.attemptID != attemptID || a.state != expect {
		return false
	}
	a.state = next
	return true
}

// terminate moves the given attempt to a terminal state from any
// non-terminal one; it reports false when the attempt already terminated
// or was superseded, which guarantees at most one delegate notification.
func (a *Authenticator) terminate(attemptID string, next State) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.attemptID != attemptID || a.state == StateNone || a.state.Terminal() {
		return false
	}
	a.state = next
	return true
}

func (a *Authenticator) cancelAttemptID(attemptID string) error {
	if a.terminate(attemptID, StateCancelled) && a.cfg.Delegate != nil {
		a.cfg.Delegate.AuthenticationCancelled()
	}
	return ErrCancelled
}

func (a *Authenticator) failAttempt(ctx context.Context, attemptID string, cause error) error {
	if !a.terminate(attemptID, StateFailed) {
		// Cancel or supersession won the race; the cause is moot.
		return ErrCancelled
	}
	a.cfg.Logger.WarnContext(ctx, "authentication failed", "error", cause)
	if a.cfg.Delegate != nil {
		a.cfg.Delegate.AuthenticationFailed(cause)
	}
	return cause
}

// validateCallback checks the redirect against the attempt's anti-forgery
// state and extracts the authorization code. Fails closed on any mismatch.
func validateCallback(callback *url.URL, csrf oauth.CSRFState) (string, error) {
	q := callback.Query()
	if got := q.Get("state"); got != csrf.Value {
		return "", &AuthorizationError{Err: errors.New("authorization response state does not match request state")}
	}
	code := q.Get("code")
	if code == "" {
		return "", &AuthorizationError{Err: fmt.Errorf("authorization response missing code (error=%q)", q.Get("error"))}
	}
	return code, nil
}

func (a *Authenticator) callbackScheme() string {
	u, err := url.Parse(a.cfg.OAuth.RedirectURI)
	if err != nil || u.Scheme == "" {
		return a.cfg.OAuth.RedirectURI
	}
	return u.Scheme
}
