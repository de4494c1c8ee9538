package timeline

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the timeline endpoint responds with no
// body at all.
var ErrEmptyResponse = errors.New("timeline: empty response body")

// AuthenticationError reports that no valid session context could be
// obtained for the fetch. It wraps the session layer's error.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return "timeline: not authenticated: " + e.Err.Error()
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// HTTPError reports a transport failure or a non-200 response.
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return "timeline: request failed: " + e.Err.Error()
	}
	return fmt.Sprintf("timeline: unexpected response status %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// DecodeError reports a response body that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "timeline: decoding response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }
