// Package redact provides utilities for redacting sensitive information
// from strings before they are logged. Errors bubbling up from the storage
// layer can carry connection strings, SQL fragments or file paths; redacting
// them centrally keeps the log pipeline safe without auditing every call site.
package redact

import (
	"regexp"
)

// RedactionPlaceholder replaces any matched sensitive fragment.
const RedactionPlaceholder = "[REDACTED]"

// Precompiled patterns for the classes of sensitive data this service can
// realistically leak: database URLs, credentials, SQL text and file paths.
var patterns = []*regexp.Regexp{
	// Database connection strings with embedded credentials
	regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@[^\s]+`),

	// Credential assignments
	regexp.MustCompile(`(?i)(password|passwd|pwd|secret|token|api[_-]?key)([=:\s]['"]?)[^'"&\s]{3,}`),

	// SQL queries and fragments
	regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)[\s\w,*()]+(?:FROM|INTO|SET|TABLE)[\s\w,*()='"$]*`),

	// Unix file paths
	regexp.MustCompile(`(/[\w.-]+){2,}`),
}

// String returns the input with all sensitive fragments replaced.
func String(s string) string {
	for _, pattern := range patterns {
		s = pattern.ReplaceAllString(s, RedactionPlaceholder)
	}
	return s
}

// Error returns the redacted message of err, or an empty string for nil.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
