package pg

import "errors"

var (
	// ErrFailedToParseConfig is returned when the connection string is invalid.
	ErrFailedToParseConfig = errors.New("pg: failed to parse connection config")
	// ErrFailedToOpenConnection is returned when all connection attempts fail.
	ErrFailedToOpenConnection = errors.New("pg: failed to open database connection")
	// ErrFailedToApplyMigrations is returned when goose cannot apply migrations.
	ErrFailedToApplyMigrations = errors.New("pg: failed to apply migrations")
)
