// Package cookie manages HTTP cookie transport with functional options over a
// set of shared defaults (path, Secure, HttpOnly, SameSite). Deleting a cookie
// reuses the same attributes with an immediate expiry so browsers actually
// drop it.
package cookie
