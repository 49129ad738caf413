package util

import (
	"strconv"
	"strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// entity suffixes stripped during fund name normalization.
var fundSuffixes = []string{"LLC", "L.L.C.", "LP", "L.P.", "LLP", "INC", "INC.", "CORP", "CORP.", "LTD", "LTD.", "CO", "CO."}

// NormalizeCIK zero-pads a CIK to the canonical 10-digit form,
// dropping any non-digit characters first.
func NormalizeCIK(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) >= 10 {
		return digits[len(digits)-10:]
	}
	return strings.Repeat("0", 10-len(digits)) + digits
}

// LooksLikeCIK reports whether s is a plain 1-10 digit identifier.
func LooksLikeCIK(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeFundName uppercases, trims, and drops a trailing entity suffix
// so that "Citadel Advisors LLC" and "CITADEL ADVISORS" compare equal.
func NormalizeFundName(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	for _, suf := range fundSuffixes {
		if strings.HasSuffix(n, " "+suf) {
			n = strings.TrimSpace(strings.TrimSuffix(n, " "+suf))
			break
		}
	}
	return strings.Join(strings.Fields(n), " ")
}
