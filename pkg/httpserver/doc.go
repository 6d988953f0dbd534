// Package httpserver is a lightweight wrapper around net/http adding graceful
// shutdown on context cancellation or SIGINT/SIGTERM, configurable timeouts,
// and structured logging. Construction uses functional options or an
// env-tagged Config via NewFromConfig.
package httpserver
