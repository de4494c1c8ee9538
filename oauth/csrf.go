package oauth

// CSRFState is the anti-forgery value round-tripped through the
// authorization redirect. Generated fresh per attempt; the flow fails closed
// if the echoed state does not match.
type CSRFState struct {
	Value string
}

// NewCSRFState generates a fresh opaque state value.
func NewCSRFState() CSRFState {
	return CSRFState{Value: randomOpaque(2)}
}
