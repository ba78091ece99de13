// Package validate holds the pure validation rules: phone normalization,
// race-time parsing, competition scheduling windows and the running-order
// checks applied to results. Handlers fetch whatever records the rules need
// and call in here, so every rule stays testable without a database.
package validate

import (
	"errors"
	"regexp"
	"strings"
)

// ErrPhone is returned for any phone string that is not a Russian number
// in one of the accepted shapes.
var ErrPhone = errors.New(
	"enter a valid Russian phone number; accepted formats: +7XXXXXXXXXX, 8XXXXXXXXXX, +7 (XXX) XXX-XX-XX, 8 (XXX) XXX-XX-XX")

// phonePattern matches a punctuation-stripped number: +7 or 8, then ten
// digits starting with a valid Russian prefix digit.
var phonePattern = regexp.MustCompile(`^(\+7|8)[489][0-9]{9}$`)

var phonePunct = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// NormalizePhone strips spaces, dashes and parentheses, validates the result
// and returns the canonical +7XXXXXXXXXX form. Normalization is idempotent:
// feeding the output back in returns the same value.
func NormalizePhone(phone string) (string, error) {
	clean := phonePunct.Replace(strings.TrimSpace(phone))
	if !phonePattern.MatchString(clean) {
		return "", ErrPhone
	}
	if strings.HasPrefix(clean, "8") {
		clean = "+7" + clean[1:]
	}
	return clean, nil
}
