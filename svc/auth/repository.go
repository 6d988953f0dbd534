package auth

import "context"

// UserRepository is the user storage collaborator consumed by the flow. The
// platform's content backend owns the rest of the user model; the auth core
// only needs lookup and creation by pseudonymous identity.
type UserRepository interface {
	// FindByPseudonym returns the user whose email equals the pseudonymous
	// address, or ErrUserNotFound.
	FindByPseudonym(ctx context.Context, pseudonym string) (*User, error)

	// FindByID returns the user with the given id, or ErrUserNotFound.
	FindByID(ctx context.Context, id int64) (*User, error)

	// Create persists a new user and fills in ID and CreatedAt.
	Create(ctx context.Context, user *User) error
}
