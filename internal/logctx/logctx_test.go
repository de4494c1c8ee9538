package logctx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestHandlerAppendsAttemptGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewJSONHandler(&buf, nil)})

	ctx := WithAttempt(context.Background(), &AttemptData{
		AttemptID: "attempt-1",
		State:     "authorizing_user",
	})
	log.InfoContext(ctx, "hello")

	out := buf.String()
	if !strings.Contains(out, `"auth":{"attempt_id":"attempt-1","state":"authorizing_user"}`) {
		t.Errorf("output missing auth group: %s", out)
	}
}

func TestHandlerAppendsSessionGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewJSONHandler(&buf, nil)})

	expiresAt := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	ctx := WithSession(context.Background(), &SessionData{ExpiresAt: expiresAt})
	log.InfoContext(ctx, "hello")

	out := buf.String()
	if !strings.Contains(out, `"sess":{"expires_at":"2025-09-01T12:00:00Z"}`) {
		t.Errorf("output missing sess group: %s", out)
	}
}

func TestHandlerPassesThroughBareContext(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewJSONHandler(&buf, nil)})

	log.InfoContext(context.Background(), "hello")

	out := buf.String()
	if strings.Contains(out, `"auth"`) || strings.Contains(out, `"sess"`) {
		t.Errorf("unexpected context groups on bare record: %s", out)
	}
}
