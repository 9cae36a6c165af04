// Package amount converts between user-entered decimal strings and atomic
// integer amounts.
//
// An asset with d decimals stores the value v as the integer v × 10^d.
// Conversion is done on the digits themselves; floating point is never used
// for an authoritative value.
package amount

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// MaxDecimals is the maximum number of decimal places an asset may declare.
const MaxDecimals = 8

// XECDecimals is the decimal precision of XEC (1 XEC = 100 sats).
const XECDecimals = 2

// Atomic is an amount in the smallest indivisible unit of an asset.
type Atomic uint64

// Parse errors.
var (
	ErrEmptyInput       = errors.New("amount is empty")
	ErrNotANumber       = errors.New("amount is not a number")
	ErrNonPositive      = errors.New("amount must be positive")
	ErrTooManyDecimals  = errors.New("amount has too many decimal places")
	ErrBelowMinimumUnit = errors.New("amount is below the smallest unit")
	ErrOverflow         = errors.New("amount overflows")
	ErrInvalidDecimals  = errors.New("decimals out of range")
)

// Parse converts a decimal string into its atomic representation for an
// asset with the given number of decimals.
//
// Trailing fractional zeros are not significant: "1.50" is accepted for a
// 1-decimal asset. A non-zero value whose atomic form would be zero
// (e.g. "0.001" at 2 decimals) is ErrBelowMinimumUnit; any other value with
// significant digits past the allowed precision is ErrTooManyDecimals.
func Parse(input string, decimals uint8) (Atomic, error) {
	if decimals > MaxDecimals {
		return 0, fmt.Errorf("%w: %d (max %d)", ErrInvalidDecimals, decimals, MaxDecimals)
	}

	s := strings.TrimSpace(input)
	if s == "" {
		return 0, ErrEmptyInput
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, err := splitDigits(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", err, input)
	}

	frac = strings.TrimRight(frac, "0")
	whole = strings.TrimLeft(whole, "0")

	if whole == "" && frac == "" {
		return 0, fmt.Errorf("%w: %q", ErrNonPositive, input)
	}
	if negative {
		return 0, fmt.Errorf("%w: %q", ErrNonPositive, input)
	}

	if len(frac) > int(decimals) {
		kept := frac[:decimals]
		if whole == "" && strings.Trim(kept, "0") == "" {
			return 0, fmt.Errorf("%w: %q with %d decimals", ErrBelowMinimumUnit, input, decimals)
		}
		return 0, fmt.Errorf("%w: %q allows %d", ErrTooManyDecimals, input, decimals)
	}

	// Right-pad the fraction to exactly `decimals` digits; the atomic value
	// is then the concatenated digit string.
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrOverflow, input)
	}
	return Atomic(v), nil
}

// splitDigits splits an unsigned decimal literal into its whole and
// fractional digit runs.
func splitDigits(s string) (string, string, error) {
	whole, frac, hasDot := strings.Cut(s, ".")
	if hasDot && strings.Contains(frac, ".") {
		return "", "", ErrNotANumber
	}
	if whole == "" && frac == "" {
		return "", "", ErrNotANumber
	}
	if !allDigits(whole) || !allDigits(frac) {
		return "", "", ErrNotANumber
	}
	return whole, frac, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Format renders an atomic amount as a decimal string. Trailing fractional
// zeros are stripped and the dot is omitted for whole values.
func Format(a Atomic, decimals uint8) string {
	digits := strconv.FormatUint(uint64(a), 10)
	d := int(decimals)
	if d == 0 {
		return digits
	}
	if len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}
	whole := digits[:len(digits)-d]
	frac := strings.TrimRight(digits[len(digits)-d:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// Canonical returns the canonical decimal form of input, i.e.
// Format(Parse(input)).
func Canonical(input string, decimals uint8) (string, error) {
	a, err := Parse(input, decimals)
	if err != nil {
		return "", err
	}
	return Format(a, decimals), nil
}

// Add returns a+b, or ErrOverflow if the sum does not fit.
func Add(a, b Atomic) (Atomic, error) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return Atomic(sum), nil
}

// Sum adds all values, failing with ErrOverflow on the first carry.
func Sum(values ...Atomic) (Atomic, error) {
	var total Atomic
	for _, v := range values {
		var err error
		if total, err = Add(total, v); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// SufficientBalance reports whether balance covers amount plus fee.
// A sum that overflows uint64 is never sufficient.
func SufficientBalance(amount, balance, fee Atomic) bool {
	sum, carry := bits.Add64(uint64(amount), uint64(fee), 0)
	if carry != 0 {
		return false
	}
	return sum <= uint64(balance)
}
