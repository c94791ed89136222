// Package validate holds the synchronous field checks run on every input
// change. Results are derived state for the screens; nothing here blocks
// or touches the store.
package validate

import (
	"regexp"
	"strings"
	"unicode"
)

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// Email reports whether email looks like a valid address
func Email(email string) bool {
	return email != "" && emailRegex.MatchString(email)
}

// EmailError returns the field error for email, empty when valid
func EmailError(email string) string {
	if Email(email) {
		return ""
	}
	return "Invalid email format"
}

// PasswordError returns the first failed password rule, empty when the
// password passes all of them: at least 8 characters, a digit and an
// uppercase letter.
func PasswordError(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters"
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return "Password must contain at least one digit"
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		return "Password must contain at least one uppercase letter"
	}
	return ""
}

// FilterName strips everything except ASCII letters. Applied per change so
// disallowed characters never enter the field.
func FilterName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StripSpaces removes all whitespace, used for email input
func StripSpaces(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
