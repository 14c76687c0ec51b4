package password

import (
	"fmt"
	"strings"
)

// Validate checks password against the configured policy.
// It returns ErrPolicy-wrapped errors so callers can map them to one
// stable "weak password" response without leaking the specific rule.
func (c Config) Validate(password string) error {
	n := len(password)
	if n < c.Policy.MinLength {
		return fmt.Errorf("%w: shorter than %d", ErrPolicy, c.Policy.MinLength)
	}
	if n > c.Policy.MaxLength {
		return fmt.Errorf("%w: longer than %d", ErrPolicy, c.Policy.MaxLength)
	}

	if c.Policy.RejectVeryWeak && isVeryWeak(password) {
		return fmt.Errorf("%w: very weak pattern", ErrPolicy)
	}

	return nil
}

// isVeryWeak catches only the most trivial inputs: a single repeated rune
// or a plain ascending digit run. Anything smarter belongs in a breach-list
// check outside this package.
func isVeryWeak(s string) bool {
	if s == "" {
		return true
	}

	first := rune(s[0])
	same := true
	for _, r := range s {
		if r != first {
			same = false
			break
		}
	}
	if same {
		return true
	}

	const digits = "0123456789012345678901234567890123456789"
	return strings.Contains(digits, s)
}
