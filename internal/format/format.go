// Package format holds pure display formatting for raw tick fields. No
// state, no parsing beyond what each output needs.
package format

import (
	"strconv"
	"strings"
	"time"
)

// Time renders an epoch-millisecond trade time as a wall-clock label.
func Time(ms int64) string {
	return time.UnixMilli(ms).Format("15:04:05")
}

// Price normalizes a decimal price string for display: trailing zeros and a
// dangling decimal point are dropped, an empty or unparsable value renders
// as "0".
func Price(p string) string {
	if _, err := strconv.ParseFloat(p, 64); err != nil {
		return "0"
	}
	if !strings.Contains(p, ".") {
		return p
	}
	trimmed := strings.TrimRight(p, "0")
	trimmed = strings.TrimRight(trimmed, ".")
	if trimmed == "" || trimmed == "-" {
		return "0"
	}
	return trimmed
}

// Quantity renders a decimal quantity string scaled by a display multiplier,
// with two fractional digits.
func Quantity(q string, multiplier float64) string {
	v, err := strconv.ParseFloat(q, 64)
	if err != nil {
		return "0"
	}
	if multiplier != 0 {
		v *= multiplier
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Volume renders a large number with a compact suffix (K, M, B).
func Volume(v float64) string {
	switch {
	case v >= 1e9:
		return strconv.FormatFloat(v/1e9, 'f', 2, 64) + "B"
	case v >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 2, 64) + "M"
	case v >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 2, 64) + "K"
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}
