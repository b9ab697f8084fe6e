package logging

import (
	"regexp"
)

const (
	// MaxContentLogLength is the maximum length of captured content to log.
	MaxContentLogLength = 120
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match potential passwords in connection strings
	// Matches: password=xxx, pwd=xxx, pass=xxx (until next delimiter)
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Pattern to match potential API keys
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)

	// Pattern to match email addresses in captured content.
	// Scan content routinely carries third-party PII that must not land in logs.
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// SanitizeConnectionString removes sensitive data from connection strings.
// Use this before logging any connection string.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	return passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
}

// SanitizeContent truncates captured mention content and redacts email
// addresses so diagnostic logs never carry raw PII.
func SanitizeContent(content string) string {
	sanitized := emailPattern.ReplaceAllString(content, RedactedText)
	if len(sanitized) > MaxContentLogLength {
		sanitized = sanitized[:MaxContentLogLength] + "..."
	}
	return sanitized
}

// SanitizeError sanitizes error messages that might contain sensitive data.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	return sanitized
}
