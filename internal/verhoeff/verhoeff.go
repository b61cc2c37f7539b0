// Package verhoeff implements the Verhoeff check-digit algorithm used by
// the tax authority to protect tax identifiers against transcription
// errors. The tables are the standard published values; the regulator's
// validator depends on them verbatim.
package verhoeff

import (
	"github.com/rezonia/moadian/internal/model"
)

// Multiplication table (dihedral group D5)
var d = [10][10]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 2, 3, 4, 0, 6, 7, 8, 9, 5},
	{2, 3, 4, 0, 1, 7, 8, 9, 5, 6},
	{3, 4, 0, 1, 2, 8, 9, 5, 6, 7},
	{4, 0, 1, 2, 3, 9, 5, 6, 7, 8},
	{5, 9, 8, 7, 6, 0, 4, 3, 2, 1},
	{6, 5, 9, 8, 7, 1, 0, 4, 3, 2},
	{7, 6, 5, 9, 8, 2, 1, 0, 4, 3},
	{8, 7, 6, 5, 9, 3, 2, 1, 0, 4},
	{9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
}

// Permutation table, applied by digit position mod 8
var p = [8][10]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	{1, 5, 7, 6, 2, 8, 3, 0, 9, 4},
	{5, 8, 0, 3, 7, 9, 6, 1, 4, 2},
	{8, 9, 1, 6, 0, 4, 3, 5, 2, 7},
	{9, 4, 5, 3, 1, 2, 6, 8, 7, 0},
	{4, 2, 8, 6, 5, 7, 3, 9, 0, 1},
	{2, 7, 9, 3, 8, 0, 6, 4, 1, 5},
	{7, 0, 4, 6, 9, 1, 3, 2, 5, 8},
}

// Inverse table
var inv = [10]int{0, 4, 3, 2, 1, 5, 6, 7, 8, 9}

// reduce runs the Verhoeff accumulator over the digit string from right
// to left and returns the final accumulator value.
func reduce(digits string) (int, error) {
	if digits == "" {
		return 0, model.NewFormatError("digits", digits, "must not be empty")
	}
	c := 0
	n := len(digits)
	for i := 0; i < n; i++ {
		ch := digits[n-1-i]
		if ch < '0' || ch > '9' {
			return 0, model.NewFormatError("digits", digits, "must contain only decimal digits 0-9")
		}
		c = d[c][p[i%8][ch-'0']]
	}
	return c, nil
}

// Compute returns the Verhoeff check digit for a numeric string.
func Compute(digits string) (int, error) {
	c, err := reduce(digits)
	if err != nil {
		return 0, err
	}
	return inv[c], nil
}

// Validate checks a numeric string whose last digit is the check digit
// computed over the digits before it.
func Validate(digits string) (bool, error) {
	if digits == "" {
		return false, model.NewFormatError("digits", digits, "must not be empty")
	}
	last := digits[len(digits)-1]
	if last < '0' || last > '9' {
		return false, model.NewFormatError("digits", digits, "must contain only decimal digits 0-9")
	}

	check, err := Compute(digits[:len(digits)-1])
	if err != nil {
		return false, err
	}
	return last == byte('0'+check), nil
}
