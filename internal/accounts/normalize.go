package accounts

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// NormalizeEmail lowercases the domain part of an email address. The local
// part is preserved as given, so "John@Example.COM" becomes "John@example.com".
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// NormalizeName trims surrounding whitespace and title-cases the name.
func NormalizeName(name string) string {
	return titleCaser.String(strings.TrimSpace(name))
}
