// Package authflowtest provides a scriptable web authentication surface
// for exercising login flows without a browser.
package authflowtest

import (
	"context"
	"net/url"
	"sync"

	"github.com/xcloneapp/xclient-go/authflow"
)

// WebAuthenticator simulates the browser authorization hand-off. The zero
// value approves the authorization: it echoes the request's state back and
// supplies Code on the callback URL.
type WebAuthenticator struct {
	// Code is the authorization code placed on the callback. Defaults to
	// "test-code" when empty and OmitCode is false.
	Code string

	// OmitCode leaves the code off the callback, as an authorization
	// server does when the user denies the grant.
	OmitCode bool

	// State overrides the echoed state value, simulating a forged or
	// corrupted redirect.
	State string

	// Err, when set, is returned instead of a callback. Use
	// authflow.ErrCancelled to simulate the user dismissing the surface.
	Err error

	// Block, when set, stalls until the context is done and returns its
	// error, simulating a surface the user never completes.
	Block bool

	mu            sync.Mutex
	authorizeURLs []string
}

// Authorize implements authflow.WebAuthenticator.
func (w *WebAuthenticator) Authorize(ctx context.Context, authorizeURL string, callbackScheme string) (*url.URL, error) {
	w.mu.Lock()
	w.authorizeURLs = append(w.authorizeURLs, authorizeURL)
	block, errv, state, code, omit := w.Block, w.Err, w.State, w.Code, w.OmitCode
	w.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if errv != nil {
		return nil, errv
	}

	req, err := url.Parse(authorizeURL)
	if err != nil {
		return nil, err
	}

	if state == "" {
		state = req.Query().Get("state")
	}
	q := url.Values{}
	q.Set("state", state)
	if !omit {
		if code == "" {
			code = "test-code"
		}
		q.Set("code", code)
	}
	return &url.URL{Scheme: callbackScheme, RawQuery: q.Encode()}, nil
}

// SetBlock flips Block while a surface may be in flight.
func (w *WebAuthenticator) SetBlock(block bool) {
	w.mu.Lock()
	w.Block = block
	w.mu.Unlock()
}

// AuthorizeCalls returns the authorize URLs presented so far.
func (w *WebAuthenticator) AuthorizeCalls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.authorizeURLs...)
}

var _ authflow.WebAuthenticator = (*WebAuthenticator)(nil)
