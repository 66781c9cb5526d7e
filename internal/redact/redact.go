// Package redact removes credentials, connection strings, SQL and other
// sensitive fragments from text before it is logged. Error messages from the
// database driver and captured response bodies both pass through here.
package redact

import (
	"regexp"
	"unicode/utf8"
)

// Placeholders written in place of redacted fragments.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"

	// TruncationMarker is appended to bodies cut by Body.
	TruncationMarker = "...[truncated]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules run in order; earlier rules see the unmodified input.
var rules = []rule{
	{
		// JSON members whose value is a secret, e.g. {"password":"..."}
		pattern: regexp.MustCompile(
			`(?i)("(?:password|passwd|secret|token|api_key|apikey|authorization)"\s*:\s*)"[^"]*"`,
		),
		replacement: `${1}"` + RedactionPlaceholder + `"`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(postgres|postgresql|mysql|db|database|connection)://[^@\s]+@`),
		replacement: RedactedCredentialPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`),
		replacement: RedactedCredentialPlaceholder,
	},
	{
		pattern: regexp.MustCompile(
			`(?i)(api[_-]?key|token|secret|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
		),
		replacement: RedactedKeyPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		replacement: "[REDACTED_JWT]",
	},
	{
		pattern:     regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`),
		replacement: "[STACK_TRACE_REDACTED]",
	},
	{
		pattern:     regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		replacement: "[REDACTED_EMAIL]",
	},
	{
		pattern: regexp.MustCompile(
			`(?i)\b(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)\b[\s\w,*()."$]+\b(FROM|INTO|SET|TABLE)\b(?:[\s\w,*()='"$.]+)?`,
		),
		replacement: RedactedSQLPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(/[\w.-]+){2,}`),
		replacement: RedactedPathPlaceholder,
	},
}

// String redacts sensitive information from s.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error redacts sensitive information from the message of err.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// Body returns a redacted copy of a request or response body, cut to at most
// limit bytes before redaction. A limit of zero or less disables the cut.
// Cuts never split a UTF-8 sequence.
func Body(body []byte, limit int) string {
	if limit <= 0 || len(body) <= limit {
		return String(string(body))
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return String(string(body[:cut])) + TruncationMarker
}
