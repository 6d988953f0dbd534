package auth

import (
	"strconv"
	"time"

	"github.com/communitylabs/authcore/pkg/jwt"
)

// DefaultAccessTokenTTL is the lifetime of a bearer access token.
const DefaultAccessTokenTTL = 15 * time.Minute

// JWTIssuer implements AccessTokenIssuer on the HS256 jwt service.
type JWTIssuer struct {
	svc *jwt.Service
	ttl time.Duration
}

// NewJWTIssuer creates an issuer signing with secret. A non-positive ttl
// falls back to the 15-minute default.
func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	svc, err := jwt.NewFromString(secret)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &JWTIssuer{svc: svc, ttl: ttl}, nil
}

func (i *JWTIssuer) Issue(userID int64) (string, error) {
	now := time.Now()
	return i.svc.Generate(jwt.StandardClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(i.ttl).Unix(),
	})
}

var _ AccessTokenIssuer = (*JWTIssuer)(nil)
