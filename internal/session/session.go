package session

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Session is the explicit authentication context threaded through every
// data-access call. Token is the opaque upstream bearer token; ID is a
// stable digest of it used to key session-scoped state.
type Session struct {
	Token string
	ID    string
}

// FromToken derives the session identity for a bearer token.
func FromToken(token string) Session {
	trimmed := strings.TrimSpace(token)
	sum := sha256.Sum256([]byte(trimmed))
	return Session{
		Token: trimmed,
		ID:    hex.EncodeToString(sum[:16]),
	}
}

// Authenticated reports whether a token is present. Validity is decided by
// the upstream API on first use.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
