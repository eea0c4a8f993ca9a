package utils

import (
	"strings"
)

func AssertInvariant(condition bool, message string) {
	if !condition {
		panic("invariant violated - " + message)
	}
}

// NormalizeComputerName lowercases and trims a computer name for the
// legacy name-based session matching fallback.
func NormalizeComputerName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
