package normalize

import (
	"strconv"
	"strings"
)

// ParseFloat converts a spreadsheet cell to float64
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// IsBlank reports whether an address cell carries no text
func IsBlank(addr string) bool {
	trimmed := strings.TrimSpace(addr)
	return trimmed == "" || strings.EqualFold(trimmed, "nan")
}

// StandardKey is the comparison key for full standardized addresses:
// lowercase with runs of whitespace collapsed to one space
func StandardKey(addr string) string {
	return strings.Join(strings.Fields(strings.ToLower(addr)), " ")
}

// SameStandardAddress reports whether two addresses are equal ignoring case and spacing
func SameStandardAddress(a, b string) bool {
	return StandardKey(a) == StandardKey(b)
}

// EqualFoldPresent reports whether both values are non-blank and equal ignoring case
func EqualFoldPresent(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
