package utils

import (
	"fmt"
	"strings"
	"unicode"
)

// IsAddressChar reports whether a rune can appear in a searchable contact
// query: letters, digits, and the separators addresses actually use.
func IsAddressChar(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '@', '.', '_', '-', '+', ' ', '\'':
		return true
	}
	return false
}

// IsValidQuery checks if input should be processed for suggestions.
// Returns false for empty strings and strings carrying characters that
// never occur in an address or a display name.
func IsValidQuery(s string) bool {
	if len(strings.TrimSpace(s)) == 0 {
		return false
	}
	for _, r := range s {
		if !IsAddressChar(r) {
			return false
		}
	}
	return true
}

// StringContainsIgnoreCase checks if string contains substring case-insensitively
func StringContainsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// HasPrefixIgnoreCase checks if string has prefix case-insensitively
func HasPrefixIgnoreCase(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}

// FormatWithCommas formats an integer with comma separators
func FormatWithCommas(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	result := ""
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(char)
	}
	return result
}

// CreateRankList creates a slice of ranks based on position.
// The rank starts at 1 for the first item and increments for subsequent items.
// Useful for ranking items that are already sorted.
func CreateRankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := 0; i < count; i++ {
		ranks[i] = uint16(i + 1)
	}
	return ranks
}
