// Package money represents currency amounts as integer minor units (cents).
//
// Amounts are stored and computed in cents end to end; decimal strings exist
// only at the API boundary. Comparisons that need a tolerance use a single
// cent, mirroring the 0.01 tolerance of the ledger invariants.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Cents is a currency amount in minor units. Positive values only for stored
// amounts; derived balances may be negative.
type Cents int64

// ErrInvalidAmount indicates a malformed or non-positive decimal amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseDecimal converts a decimal string to cents with half-up rounding on
// the third decimal place. Both "12.34" and "12,34" are accepted. Zero and
// negative amounts are rejected; stored ledger amounts are always positive.
func ParseDecimal(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	cents := iv*100 + frac
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return Cents(cents), nil
}

// FromFloat converts a float amount in major units to cents with half-up
// rounding. Used for values produced by external services (receipt analysis),
// which arrive as JSON numbers.
func FromFloat(f float64) Cents {
	if f < 0 {
		return Cents(-int64(-f*100 + 0.5))
	}
	return Cents(int64(f*100 + 0.5))
}

// String formats the amount as a plain decimal ("12.34", "-0.05").
func (c Cents) String() string {
	v := int64(c)
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d.%02d", v/100, v%100)
	if neg {
		return "-" + s
	}
	return s
}

// DivideRound returns c/n rounded half-up. n must be positive.
func (c Cents) DivideRound(n int) Cents {
	if n <= 0 {
		return 0
	}
	v := int64(c)
	d := int64(n)
	if v < 0 {
		return Cents(-((-v + d/2) / d))
	}
	return Cents((v + d/2) / d)
}

// Abs returns the magnitude of the amount.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}
