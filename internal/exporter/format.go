package exporter

import (
	"strconv"
)

// FormatFloat formats f with prec decimal places for CSV output
func FormatFloat(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}

// FormatInt formats an integer for CSV output
func FormatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}
