// Package client is the terminal client's view of the Messagely HTTP API.
//
// HTTPClient wraps net/http, keeps the access token returned by login or
// registration and sends it as a Bearer token on every later call.
//
// # Error Handling
//
// Non-2xx responses become *APIError, which unwraps to the matching sentinel
// in internal/common (ErrorUnauthorized, ErrorNotFound, ...), so callers can
// use errors.Is. Transport failures wrap ErrUnavailable.
package client
