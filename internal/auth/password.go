package auth

import (
	"strings"
	"unicode"
)

// passwordMinLength is the minimum accepted password length in runes.
const passwordMinLength = 10

// minIdentifierLen is the shortest identifier fragment checked as a
// substring; shorter fragments would reject almost everything.
const minIdentifierLen = 4

// PasswordIdentifiers carries the account identifiers a password must not
// contain. Zero values skip the corresponding check.
type PasswordIdentifiers struct {
	Username string
	Email    string
}

// AssertPasswordPolicy validates pw against the policy applied identically at
// registration, password change, and password reset: minimum length, all four
// character classes, and no case-insensitive occurrence of the username or
// the local part of the email.
func AssertPasswordPolicy(pw string, ids PasswordIdentifiers) error {
	if len([]rune(pw)) < passwordMinLength {
		return ErrWeakPassword
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		return ErrWeakPassword
	}
	lowered := strings.ToLower(pw)
	if containsIdentifier(lowered, ids.Username) {
		return ErrPasswordIdentifier
	}
	if containsIdentifier(lowered, emailLocalPart(ids.Email)) {
		return ErrPasswordIdentifier
	}
	return nil
}

func containsIdentifier(loweredPW, identifier string) bool {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if len([]rune(identifier)) < minIdentifierLen {
		return false
	}
	return strings.Contains(loweredPW, identifier)
}

func emailLocalPart(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return email
	}
	return email[:at]
}
