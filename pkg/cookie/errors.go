package cookie

import "errors"

// ErrCookieNotFound is returned when the request carries no cookie with the
// requested name.
var ErrCookieNotFound = errors.New("cookie not found")
