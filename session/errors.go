package session

import "fmt"

// SecureStorageError wraps a secure store failure. Terminal for the call in
// which it occurred; the caller decides whether to prompt re-login.
type SecureStorageError struct {
	Err error
}

func (e *SecureStorageError) Error() string { return fmt.Sprintf("session: secure storage: %v", e.Err) }
func (e *SecureStorageError) Unwrap() error { return e.Err }

// RefreshTokenFetchError wraps a failed refresh-token exchange. Terminal;
// the session is treated as not authenticated.
type RefreshTokenFetchError struct {
	Err error
}

func (e *RefreshTokenFetchError) Error() string {
	return fmt.Sprintf("session: refresh token exchange: %v", e.Err)
}
func (e *RefreshTokenFetchError) Unwrap() error { return e.Err }

// IdentityFetchError wraps a failed identity resolution.
type IdentityFetchError struct {
	Err error
}

func (e *IdentityFetchError) Error() string {
	return fmt.Sprintf("session: identity fetch: %v", e.Err)
}
func (e *IdentityFetchError) Unwrap() error { return e.Err }
