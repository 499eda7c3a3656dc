package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts a decimal string to an amount.
// It accepts both dot and comma as the decimal separator and rejects
// anything non-numeric or non-finite. Sign and range rules belong to
// the caller: the store accepts zero, the import path requires > 0.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("100")    -> 100
//	ParseAmount("-5")     -> -5
//	ParseAmount("abc")    -> error
//	ParseAmount("")       -> error
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	// Normalize decimal comma. Thousand separators are not supported;
	// a string with more than one separator fails the parse below.
	s = strings.ReplaceAll(s, ",", ".")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders an amount with the fewest digits that survive a
// round trip through ParseAmount.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
