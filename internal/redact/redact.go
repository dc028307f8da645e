// Package redact strips sensitive information from strings before they reach
// the log stream or an error response. The patterns cover what this service
// can actually leak: database connection credentials, SQL statements with
// bound values from the store layer, record and user identifiers, contact
// addresses carried by sender errors, and local file paths from config or
// migration failures.
package redact

import "regexp"

// Redaction placeholders.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedUUIDPlaceholder       = "[REDACTED_UUID]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedHostPlaceholder       = "[REDACTED_HOST]"
)

// Precompiled patterns, applied in order. SQL comes before the identifier
// patterns so a statement is removed whole instead of leaving a skeleton of
// placeholders around its keywords.
var (
	// postgres://user:secret@ in connection URLs
	dbConnRegex = regexp.MustCompile(`(?i)\bpostgres(?:ql)?://[^@\s]+@`)

	// password=... / pwd: ... parameters
	passwordRegex = regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)[=:]\s*\S+`)

	// A SQL statement and everything after it. The shapes are anchored on
	// keyword pairs (SELECT...FROM, UPDATE...SET) so prose like "failed to
	// update reminder state" is left alone.
	sqlRegex = regexp.MustCompile(
		`(?is)\b(?:SELECT\s.+?\sFROM|INSERT\s+INTO|UPDATE\s+\S+\s+SET|DELETE\s+FROM)\b.*`,
	)

	// Record and user identifiers
	uuidRegex = regexp.MustCompile(
		`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`,
	)

	// Contact addresses from channel sender errors
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Local file paths (two or more segments)
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)

	// Dotted hostnames with an optional port
	hostPortRegex = regexp.MustCompile(
		`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`,
	)

	replacements = []struct {
		pattern     *regexp.Regexp
		placeholder string
	}{
		{dbConnRegex, RedactedCredentialPlaceholder},
		{passwordRegex, RedactedCredentialPlaceholder},
		{sqlRegex, RedactedSQLPlaceholder},
		{uuidRegex, RedactedUUIDPlaceholder},
		{emailRegex, RedactedEmailPlaceholder},
		{unixPathRegex, RedactedPathPlaceholder},
		{hostPortRegex, RedactedHostPlaceholder},
	}
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range replacements {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
