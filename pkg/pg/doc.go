// Package pg wires pgx connection pools with retrying startup and goose
// migrations driven from an embedded filesystem.
package pg
