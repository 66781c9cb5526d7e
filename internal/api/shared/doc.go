// Package shared holds the request decoding, validation and response
// helpers used by the HTTP handlers and middleware.
package shared
