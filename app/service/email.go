package service

import "strings"

// NormalizeEmail lower-cases and trims an email address. Stored submissions
// and membership checks always use this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
