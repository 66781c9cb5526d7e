// Package middleware provides the HTTP middleware of the API: trace IDs,
// response logging and per-client rate limiting.
package middleware
