// Package validate holds the input shape checks applied before any store or
// provider call. These are advisory predicates, not security boundaries.
package validate

import "regexp"

var (
	emailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phoneRe = regexp.MustCompile(`^\+?\d{10,15}$`)
)

// Email reports whether s has a minimal user@domain.tld shape.
func Email(s string) bool {
	return emailRe.MatchString(s)
}

// Phone reports whether s is an optional leading + followed by 10-15 digits.
func Phone(s string) bool {
	return phoneRe.MatchString(s)
}

// Password reports whether s meets the minimum length.
func Password(s string) bool {
	return len(s) >= 6
}

// Required reports whether every field is non-empty.
func Required(fields ...string) bool {
	for _, f := range fields {
		if f == "" {
			return false
		}
	}
	return true
}
