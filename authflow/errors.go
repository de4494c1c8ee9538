package authflow

// AuthorizationError reports a failed browser authorization hand-off: the
// web surface errored, the redirect's anti-forgery state did not match, or
// the redirect carried no authorization code.
type AuthorizationError struct {
	Err error
}

func (e *AuthorizationError) Error() string {
	return "authflow: authorization failed: " + e.Err.Error()
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// TokenExchangeError reports a failed authorization-code exchange.
type TokenExchangeError struct {
	Err error
}

func (e *TokenExchangeError) Error() string {
	return "authflow: token exchange failed: " + e.Err.Error()
}

func (e *TokenExchangeError) Unwrap() error { return e.Err }

// SessionCommitError reports that freshly exchanged credentials could not
// be committed as the current session.
type SessionCommitError struct {
	Err error
}

func (e *SessionCommitError) Error() string {
	return "authflow: session commit failed: " + e.Err.Error()
}

func (e *SessionCommitError) Unwrap() error { return e.Err }
