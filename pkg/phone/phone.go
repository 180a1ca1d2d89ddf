// Package phone formats phone numbers for display.
package phone

import "strings"

// MaxDigits is the longest number the formatter keeps.
const MaxDigits = 10

// Digits returns s with every non-digit removed.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format renders raw as a North American display number:
//
//	"555"         -> "555"
//	"55512"       -> "(555) 12"
//	"5551234567"  -> "(555) 123-4567"
//
// Non-digits are stripped and anything past ten digits is dropped, so
// formatting an already formatted number returns it unchanged.
func Format(raw string) string {
	d := Digits(raw)
	if len(d) > MaxDigits {
		d = d[:MaxDigits]
	}
	switch {
	case len(d) < 4:
		return d
	case len(d) < 7:
		return "(" + d[:3] + ") " + d[3:]
	default:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	}
}
