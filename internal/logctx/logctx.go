// Package logctx decorates slog records with authentication context carried
// through context.Context: the login attempt in flight and the session the
// call is operating on. Token secrets never pass through here.
package logctx

import (
	"context"
	"log/slog"
	"time"
)

// Handler wraps an slog.Handler, appending auth/session groups pulled from
// the record's context.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if ad, ok := ctx.Value(attemptDataKey{}).(*AttemptData); ok {
		r.AddAttrs(slog.Group("auth",
			slog.String("attempt_id", ad.AttemptID),
			slog.String("state", ad.State),
		))
	}

	if sd, ok := ctx.Value(sessionDataKey{}).(*SessionData); ok {
		r.AddAttrs(slog.Group("sess",
			slog.Time("expires_at", sd.ExpiresAt),
		))
	}

	return h.Handler.Handle(ctx, r)
}

type attemptDataKey struct{}

// AttemptData identifies one login attempt.
type AttemptData struct {
	AttemptID string
	State     string
}

// WithAttempt attaches login attempt data to ctx.
func WithAttempt(ctx context.Context, ad *AttemptData) context.Context {
	return context.WithValue(ctx, attemptDataKey{}, ad)
}

type sessionDataKey struct{}

// SessionData describes the session a call operates on.
type SessionData struct {
	ExpiresAt time.Time
}

// WithSession attaches session data to ctx.
func WithSession(ctx context.Context, sd *SessionData) context.Context {
	return context.WithValue(ctx, sessionDataKey{}, sd)
}
