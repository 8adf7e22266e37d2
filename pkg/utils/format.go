package utils

import "strconv"

// FormatPrice renders a price with the minimal number of digits, so a target
// stored as 1.10000 prints as "1.1".
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
