package identity

import "strings"

// NormalizeEmail lower-cases and trims an email address so lookups and
// uniqueness checks agree on a single canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
