package oauth

import (
	"crypto/sha256"
	"encoding/base64"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// ChallengeMethod selects how the PKCE code challenge is derived from the
// verifier.
type ChallengeMethod string

const (
	// MethodPlain sends the verifier unmodified as the challenge.
	MethodPlain ChallengeMethod = "plain"
	// MethodS256 sends base64url(sha256(verifier)), unpadded.
	MethodS256 ChallengeMethod = "S256"
)

// PKCEChallenge binds one authorization request to its token exchange.
// The verifier must never be persisted or logged; it is consumed exactly
// once during the code exchange.
type PKCEChallenge struct {
	Verifier  string
	Challenge string
	Method    ChallengeMethod
}

// NewPKCEChallenge generates a fresh verifier and derives its challenge.
// The verifier is 72 or 108 characters of concatenated UUIDs, within the
// 43-128 character range RFC 7636 requires.
func NewPKCEChallenge(method ChallengeMethod) PKCEChallenge {
	verifier := randomOpaque(2 + rand.IntN(2))
	challenge := verifier
	if method == MethodS256 {
		sum := sha256.Sum256([]byte(verifier))
		challenge = base64.RawURLEncoding.EncodeToString(sum[:])
	}
	return PKCEChallenge{Verifier: verifier, Challenge: challenge, Method: method}
}

// randomOpaque concatenates n random UUID strings.
func randomOpaque(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(uuid.NewString())
	}
	return b.String()
}
