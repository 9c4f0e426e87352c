// Package redact strips sensitive information from error strings before
// they are logged. Connection strings, credentials and bearer tokens have
// no business appearing in log output even at debug level.
package redact

import "regexp"

// Placeholder inserted wherever sensitive content was found.
const Placeholder = "[REDACTED]"

var patterns = []*regexp.Regexp{
	// database connection strings with inline credentials
	regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`),
	// password=..., pwd: ... and similar assignments
	regexp.MustCompile(`(?i)(password|passwd|pwd|secret)[=:\s]['"]?[^'"&\s]{3,}`),
	// api keys / tokens in key=value form
	regexp.MustCompile(`(?i)(api[_-]?key|token|authorization)[=:\s]+[A-Za-z0-9_\-.~+/]{8,}`),
	// three-part base64url JWTs
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
}

// String returns s with any sensitive fragments replaced by Placeholder.
func String(s string) string {
	for _, re := range patterns {
		s = re.ReplaceAllString(s, Placeholder)
	}
	return s
}

// Error returns the redacted message of err, or "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
