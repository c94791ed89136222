package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@example.co.uk",
		"user+tag@sub.example.org",
		"USER_99%x@example.io",
	}
	for _, email := range valid {
		assert.True(t, Email(email), "expected %q to be valid", email)
		assert.Empty(t, EmailError(email))
	}

	invalid := []string{
		"",
		"user@",
		"userexample.com",
		"@example.com",
		"user@example",
		"user@example.c",
		"user @example.com",
	}
	for _, email := range invalid {
		assert.False(t, Email(email), "expected %q to be invalid", email)
		assert.Equal(t, "Invalid email format", EmailError(email))
	}
}

func TestPasswordError(t *testing.T) {
	tests := []struct {
		password string
		want     string
	}{
		{"Valid123", ""},
		{"short1A", "Password must be at least 8 characters"},
		{"", "Password must be at least 8 characters"},
		{"alllowercase1", "Password must contain at least one uppercase letter"},
		{"NoDigitsHere", "Password must contain at least one digit"},
		{"Tr0ub4dor&3", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PasswordError(tt.password), "password %q", tt.password)
	}
}

func TestFilterName(t *testing.T) {
	assert.Equal(t, "John", FilterName("John"))
	assert.Equal(t, "John", FilterName("John123"))
	assert.Equal(t, "OConnor", FilterName("O'Connor"))
	assert.Equal(t, "AnneMarie", FilterName("Anne-Marie "))
	assert.Equal(t, "", FilterName("123 !?"))
}

func TestStripSpaces(t *testing.T) {
	assert.Equal(t, "user@example.com", StripSpaces(" user@example.com "))
	assert.Equal(t, "user@example.com", StripSpaces("user @ example.com"))
	assert.Equal(t, "ab", StripSpaces("a\tb\n"))
}
