// Package money implements arithmetic over the decimal-string amounts used by
// the commerce backend. Amounts are held in integer minor units so that unit
// price derivation and quantity scaling never go through floats.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

const defaultScale = 2

// Amount is a fixed-point monetary amount: minor units at a decimal scale.
type Amount struct {
	minor int64
	scale int
}

// Parse reads a decimal string such as "240", "240.5" or "240.00".
// At most four fraction digits are accepted.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 4 {
		return Amount{}, fmt.Errorf("amount %q: too many fraction digits", s)
	}
	scale := len(frac)
	if scale < defaultScale {
		frac += strings.Repeat("0", defaultScale-scale)
		scale = defaultScale
	}
	digits := whole + frac
	minor, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Amount{}, fmt.Errorf("amount %q: %w", s, err)
	}
	if neg {
		minor = -minor
	}
	return Amount{minor: minor, scale: scale}, nil
}

// FromMinor builds an Amount from integer minor units, e.g. paise or cents.
func FromMinor(minor int64, scale int) Amount {
	if scale < 0 {
		scale = 0
	}
	return Amount{minor: minor, scale: scale}
}

// Zero is an Amount of 0 at the default two-digit scale.
func Zero() Amount {
	return Amount{scale: defaultScale}
}

func (a Amount) String() string {
	minor := a.minor
	neg := minor < 0
	if neg {
		minor = -minor
	}
	p := pow10(a.scale)
	whole := minor / p
	frac := minor % p
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(whole, 10))
	if a.scale > 0 {
		b.WriteByte('.')
		fs := strconv.FormatInt(frac, 10)
		b.WriteString(strings.Repeat("0", a.scale-len(fs)))
		b.WriteString(fs)
	}
	return b.String()
}

// Add returns a+b, aligned to the wider scale.
func (a Amount) Add(b Amount) Amount {
	a, b = align(a, b)
	return Amount{minor: a.minor + b.minor, scale: a.scale}
}

// MulInt scales the amount by an integer quantity.
func (a Amount) MulInt(n int) Amount {
	return Amount{minor: a.minor * int64(n), scale: a.scale}
}

// DivInt divides the amount by a positive integer quantity, rounding half up
// at the amount's scale. Used to derive a unit price from a line cost.
func (a Amount) DivInt(n int) Amount {
	if n <= 0 {
		return Amount{scale: a.scale}
	}
	d := int64(n)
	q := a.minor / d
	r := a.minor % d
	if r*2 >= d {
		q++
	}
	return Amount{minor: q, scale: a.scale}
}

// IsZero reports whether the amount equals zero.
func (a Amount) IsZero() bool {
	return a.minor == 0
}

func align(a, b Amount) (Amount, Amount) {
	for a.scale < b.scale {
		a.minor *= 10
		a.scale++
	}
	for b.scale < a.scale {
		b.minor *= 10
		b.scale++
	}
	return a, b
}

func pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
