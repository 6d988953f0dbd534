// Package clientip extracts the originating client IP address from HTTP
// requests, honoring common proxy and CDN forwarding headers before falling
// back to the connection's remote address. The CSRF token service binds
// anti-forgery tokens to the address this package reports.
package clientip
