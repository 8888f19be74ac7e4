package sanitizer

import "strings"

// SanitizeName trims surrounding whitespace and collapses internal runs of
// whitespace to a single space.
func SanitizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// SanitizeEmail trims whitespace and lowercases the address.
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SanitizePhone strips the separators people habitually type into phone
// numbers. Digit count is enforced later by validation, not here.
func SanitizePhone(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		switch r {
		case ' ', '-', '(', ')', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
