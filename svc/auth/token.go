package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// newOpaqueToken returns a 256-bit random token in URL-safe base64. Used for
// OAuth state, refresh and CSRF tokens; the payloads live in the key/value
// store keyed by the token, never inside it.
func newOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
