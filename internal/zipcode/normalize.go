package zipcode

import "strings"

// digits strips every non-digit rune.
func digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize reduces raw to a 5-digit ZIP. Separators and whitespace are
// ignored; a ZIP+4 is cut to its first five digits. Any other digit count
// is rejected.
func Normalize(raw string) (string, bool) {
	d := digits(raw)
	switch len(d) {
	case 5:
		return d, true
	case 9:
		return d[:5], true
	default:
		return "", false
	}
}

// Strict accepts only input that is exactly five digits once separators and
// whitespace are removed. Booking decisions go through Strict, so a ZIP+4
// is rejected there even though Normalize would accept it.
func Strict(raw string) (string, bool) {
	d := digits(raw)
	if len(d) != 5 {
		return "", false
	}
	return d, true
}

// IsZip5 reports whether s is exactly five ASCII digits.
func IsZip5(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Format renders a ZIP for display: nine digits become "12345-6789", anything
// else is returned with its separators removed.
func Format(raw string) string {
	d := digits(raw)
	if len(d) == 9 {
		return d[:5] + "-" + d[5:]
	}
	return d
}
