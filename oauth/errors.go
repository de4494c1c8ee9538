package oauth

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse indicates the token endpoint returned no body.
var ErrEmptyResponse = errors.New("oauth: empty response from token endpoint")

// DecodeError indicates the token endpoint response could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("oauth: decode token response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// HTTPError indicates the token endpoint call failed at the transport layer
// or returned a non-success status.
type HTTPError struct {
	StatusCode int // zero when the request never completed
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oauth: token endpoint request: %v", e.Err)
	}
	return fmt.Sprintf("oauth: token endpoint returned status %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error { return e.Err }
