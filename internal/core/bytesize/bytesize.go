// Package bytesize renders byte counts as human readable magnitudes using 1024 steps
package bytesize

import "strconv"

// DefaultDecimals is the number of fractional digits Format renders
const DefaultDecimals = 2

var units = [...]string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// Format renders b with DefaultDecimals fractional digits, e.g. 1536 -> "1.50 KB"
func Format(b uint64) string { return FormatDecimals(b, DefaultDecimals) }

// FormatDecimals renders b scaled to the largest unit it fills at least once
// trailing zeros are kept so the output always carries exactly decimals digits
// a uint64 tops out in the EB range so the unit table never overflows
func FormatDecimals(b uint64, decimals int) string {
	if b == 0 {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}

	i := 0
	v := float64(b)
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return strconv.FormatFloat(v, 'f', decimals, 64) + " " + units[i]
}
