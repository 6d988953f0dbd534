// Package config loads typed configuration structs from environment variables
// (and an optional .env file) with per-type caching, so shared configuration
// is parsed exactly once per process.
package config
