package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// pseudonymLen is the number of hex characters kept from the HMAC digest.
// 128 bits is plenty to keep repeated logins collision-free.
const pseudonymLen = 32

// ErrPseudonymSecretMissing is returned when constructing a Pseudonymizer
// without a secret.
var ErrPseudonymSecretMissing = errors.New("pseudonymizer requires a secret")

// Pseudonymizer derives stable, non-reversible local identifiers from real
// email addresses. The same input always maps to the same output, which makes
// find-or-create idempotent across logins, while the real address never
// reaches storage.
type Pseudonymizer struct {
	secret []byte
	domain string
}

// NewPseudonymizer creates a Pseudonymizer keyed with secret. The domain forms
// the host part of the synthetic address.
func NewPseudonymizer(secret, domain string) (*Pseudonymizer, error) {
	if secret == "" {
		return nil, ErrPseudonymSecretMissing
	}
	if domain == "" {
		domain = "users.noreply.invalid"
	}
	return &Pseudonymizer{secret: []byte(secret), domain: domain}, nil
}

// Derive maps an email address to its pseudonymous synthetic address:
// hex(hmac_sha256(secret, lowercase(trim(email)))) truncated, at the
// configured domain. Case and surrounding whitespace do not affect the result.
func (p *Pseudonymizer) Derive(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))

	mac := hmac.New(sha256.New, p.secret)
	mac.Write([]byte(normalized))
	digest := hex.EncodeToString(mac.Sum(nil))

	return digest[:pseudonymLen] + "@" + p.domain
}
