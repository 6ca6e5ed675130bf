// Package common contains shared constants and sentinel errors used across
// Messagely components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the token inside the Authorization header.
const BearerScheme = "Bearer"

// RequestIDHeaderName is echoed on every response.
const RequestIDHeaderName = "X-Request-ID"
