package validator

import (
	"strings"
	"unicode/utf8"
)

// IsBlank reports whether s is empty after trimming whitespace
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// LengthBetween checks the trimmed character (not byte) length of s
func LengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= min && n <= max
}

// InRange checks min <= n <= max
func InRange(n, min, max int) bool {
	return n >= min && n <= max
}

// NormalizeTags lowercases, trims and de-duplicates tags, dropping empty ones.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
