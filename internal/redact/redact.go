// Package redact strips sensitive material from strings before they are
// logged: connection strings, bearer tokens and SQL fragments that can leak
// through wrapped driver errors.
package redact

import "regexp"

// Redaction placeholders.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	SQLPlaceholder        = "[REDACTED_SQL]"
)

var (
	// Database connection strings with inline credentials.
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|redis|mysql)://[^@\s]+@`)

	// JWT tokens: three base64url segments, the first two starting with the
	// standard {"..."} prefix.
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Secrets assigned inline (password=..., secret: ...).
	secretRegex = regexp.MustCompile(`(?i)(password|secret|token|key)([=:\s]['"]?)[^'"&\s]{3,}`)

	// SQL fragments surfaced by driver errors.
	sqlRegex = regexp.MustCompile(
		`(?i)(SELECT|INSERT|UPDATE|DELETE)[\s\w,*()]+(?:FROM|INTO|SET)[\s\w,*()='"$]*`,
	)
)

// String returns s with all recognized sensitive patterns replaced by
// placeholders.
func String(s string) string {
	s = dbConnRegex.ReplaceAllString(s, CredentialPlaceholder+"@")
	s = jwtTokenRegex.ReplaceAllString(s, TokenPlaceholder)
	s = secretRegex.ReplaceAllString(s, "$1$2"+CredentialPlaceholder)
	s = sqlRegex.ReplaceAllString(s, SQLPlaceholder)
	return s
}

// Error returns the redacted message of err, or an empty string for nil.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
