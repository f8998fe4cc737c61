package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation limits for account and project fields.
const (
	maxEmailLen       = 254
	minPasswordLen    = 8
	maxPasswordLen    = 72 // bcrypt ignores anything longer
	maxDisplayNameLen = 100
	maxProjectNameLen = 120
	maxDescriptionLen = 1_000
)

// validateRegistration checks sign-up inputs and returns the first error found.
func validateRegistration(email, password, displayName string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "email is required"
	}
	if len(email) > maxEmailLen {
		return "email is too long"
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "email is not a valid address"
	}
	if len(password) < minPasswordLen {
		return "password must be at least 8 characters"
	}
	if len(password) > maxPasswordLen {
		return "password must be at most 72 bytes"
	}
	if utf8.RuneCountInString(strings.TrimSpace(displayName)) > maxDisplayNameLen {
		return "display name is too long (max 100 characters)"
	}
	return ""
}

// validateProject checks project name and description.
func validateProject(name, description string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "name is required"
	}
	if utf8.RuneCountInString(name) > maxProjectNameLen {
		return "name is too long (max 120 characters)"
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "description is too long (max 1,000 characters)"
	}
	return ""
}
