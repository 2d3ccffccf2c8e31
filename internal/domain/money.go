package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Cents is a money amount in integer minor units. Prices never touch floats.
type Cents int64

// Mul scales a per-person price by a participant count.
func (c Cents) Mul(n int) Cents {
	return c * Cents(n)
}

// FormatCents renders an amount with two decimal places, e.g. 5000 -> "50.00".
func FormatCents(c Cents) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// ParseCents parses a decimal money string ("50", "50.5", "50.00") into cents.
// More than two fractional digits is an error rather than silent truncation.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	out := Cents(w*100 + f)
	if neg {
		out = -out
	}
	return out, nil
}
