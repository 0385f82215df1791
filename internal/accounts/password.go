package accounts

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// commonPasswords is a short deny list of passwords seen in breach corpora.
// Matching is case-insensitive.
var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"passw0rd":   {},
	"qwerty123":  {},
	"letmein1":   {},
	"welcome1":   {},
	"iloveyou":   {},
	"sunshine":   {},
	"admin123":   {},
	"abc12345":   {},
	"football":   {},
	"baseball":   {},
	"superman":   {},
	"princess":   {},
	"trustno1":   {},
	"dragon123":  {},
	"monkey123":  {},
	"master123":  {},
	"password!":  {},
	"changeme":   {},
	"12345678":   {},
	"123456789":  {},
	"1234567890": {},
	"qwertyuiop": {},
}

// PasswordPolicyError describes why a password was rejected.
type PasswordPolicyError struct {
	Reason string
}

func (e *PasswordPolicyError) Error() string {
	return fmt.Sprintf("password rejected: %s", e.Reason)
}

// ValidatePassword checks the raw password against the strength policy:
// minimum length, not entirely numeric, not a common password, and not too
// similar to the user's email or names.
func ValidatePassword(password, email, firstName, lastName string) error {
	if len(password) < MinPasswordLength {
		return &PasswordPolicyError{Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLength)}
	}

	if isAllNumeric(password) {
		return &PasswordPolicyError{Reason: "must not be entirely numeric"}
	}

	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		return &PasswordPolicyError{Reason: "too common"}
	}

	if similarToIdentity(password, email, firstName, lastName) {
		return &PasswordPolicyError{Reason: "too similar to account details"}
	}

	return nil
}

// HashPassword transforms the raw password into a bcrypt hash. The raw
// password does not survive past this call.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the raw password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func isAllNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// similarToIdentity checks the password against the email (whole, local part,
// and local part fragments) and name fields. A match in either direction
// counts: a password containing the attribute or contained by it.
func similarToIdentity(password, email, firstName, lastName string) bool {
	p := strings.ToLower(password)

	attrs := []string{strings.ToLower(email), strings.ToLower(firstName), strings.ToLower(lastName)}
	if at := strings.Index(strings.ToLower(email), "@"); at > 0 {
		local := strings.ToLower(email[:at])
		attrs = append(attrs, local)
		attrs = append(attrs, strings.FieldsFunc(local, func(r rune) bool {
			return r == '.' || r == '-' || r == '_' || r == '+'
		})...)
	}

	for _, attr := range attrs {
		if len(attr) < 4 {
			continue
		}
		if strings.Contains(p, attr) || strings.Contains(attr, p) {
			return true
		}
	}
	return false
}
