// Package jwt implements HMAC-SHA256 signed JSON Web Tokens with standard
// claim validation. The auth service uses it to mint short-lived bearer
// access tokens; verification lives with the API gateway that consumes them.
package jwt
