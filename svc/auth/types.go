package auth

import "time"

// RoleAuthenticated is assigned to every user created through the OAuth flow.
const RoleAuthenticated = "authenticated"

// User represents a local user account. Email holds the pseudonymous address
// derived from the provider email; the real address is never persisted.
type User struct {
	ID        int64
	Username  string
	Email     string
	Role      string
	CreatedAt time.Time
}

// Session holds the artifacts issued after a successful authentication:
// a short-lived bearer access token and a long-lived one-time refresh token.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

// AccessTokenIssuer mints short-lived bearer credentials for a user id.
// Verification of the issued tokens is owned by the API layer consuming them.
type AccessTokenIssuer interface {
	Issue(userID int64) (string, error)
}
