// Package cpf validates and formats Brazilian CPF tax identifiers.
//
// A CPF is an 11-digit string whose last two digits are check digits
// computed with the national modulo-11 scheme. Stores persist the
// normalized digits-only form; the punctuated form is presentation only.
//
// Usage: call Normalize at trust boundaries before persisting or comparing;
// Validate accepts either punctuated or digits-only input.
package cpf

import "strings"

// Length is the number of digits in a canonical CPF.
const Length = 11

// Normalize strips every non-digit character from raw.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate reports whether raw is a well-formed CPF. Malformed input is
// never an error, only false: not exactly 11 digits, a single repeated
// digit, or failing check digits all evaluate false.
func Validate(raw string) bool {
	digits := Normalize(raw)
	if len(digits) != Length {
		return false
	}
	if allSame(digits) {
		return false
	}
	if checkDigit(digits, 9) != int(digits[9]-'0') {
		return false
	}
	return checkDigit(digits, 10) == int(digits[10]-'0')
}

// Format re-inserts the canonical punctuation (XXX.XXX.XXX-XX) into an
// 11-digit string. Input of any other length is returned unchanged.
func Format(digits string) string {
	if len(digits) != Length {
		return digits
	}
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
}

// checkDigit computes the modulo-11 check digit over digits[0:n], using
// descending weights starting at n+1.
func checkDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	rem := sum % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
