// Package auth implements the authentication session and token lifecycle of
// the platform: the OAuth2 authorization-code flow against an external
// identity provider, CSRF-protected state handling, one-time-use refresh
// token rotation, email pseudonymization and cookie-based session transport.
//
// The flow is provider-agnostic: provider specifics live behind
// ProviderAdapter, user storage behind UserRepository and access token
// minting behind AccessTokenIssuer. All token state lives in a
// kvstore.Store under namespaced keys, so the whole package degrades
// gracefully with the store when the durable backend is unavailable.
package auth
