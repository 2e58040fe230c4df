// Package phone provides the phone number format check used when patient
// contact details are edited. The rule is deliberately loose: it accepts
// anything dialable rather than enforcing a regional numbering plan.
package phone

import "regexp"

// pattern accepts an optional leading +, then digits optionally separated
// by spaces, dots, dashes or parentheses. The value must start and end
// with a digit and be between 4 and 20 characters of payload.
var pattern = regexp.MustCompile(`^\+?[0-9][0-9\-\s().]{2,18}[0-9]$`)

// Valid reports whether s looks like a phone number. Short local forms
// such as "555-1" pass; empty strings and alphabetic input do not.
func Valid(s string) bool {
	return pattern.MatchString(s)
}
