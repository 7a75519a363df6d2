package suggest

import (
	"sort"
	"strings"

	"github.com/bastiangx/contactserve/internal/utils"
)

// DefaultLimit caps how many suggestions a single query returns.
const DefaultLimit = 8

// Rank filters entries against the query and orders the matches with a
// fixed tie-break cascade, truncating to limit. An empty or whitespace-only
// query matches nothing. Rank is pure: it never mutates the snapshot, and
// identical inputs yield identically ordered output.
func Rank(query string, entries []ContactSuggestion, limit int) []ContactSuggestion {
	q := normalizeQuery(query)
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var matched []ContactSuggestion
	for i := range entries {
		if matchesQuery(&entries[i], q) {
			matched = append(matched, entries[i])
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return rankLess(&matched[i], &matched[j], q)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

// matchesQuery reports whether the query is a substring of the entry's
// email, name or domain. The email is stored lowercase already; only the
// name needs folding.
func matchesQuery(e *ContactSuggestion, q string) bool {
	if strings.Contains(e.Email, q) {
		return true
	}
	if e.Name != "" && utils.StringContainsIgnoreCase(e.Name, q) {
		return true
	}
	return strings.Contains(e.Domain(), q)
}

// rankLess is the strict comparator: name-prefix beats email-prefix beats
// frequency beats recency. Each criterion is consulted only when the one
// above it does not distinguish the two entries.
func rankLess(a, b *ContactSuggestion, q string) bool {
	aName := a.Name != "" && utils.HasPrefixIgnoreCase(a.Name, q)
	bName := b.Name != "" && utils.HasPrefixIgnoreCase(b.Name, q)
	if aName != bName {
		return aName
	}

	aEmail := strings.HasPrefix(a.Email, q)
	bEmail := strings.HasPrefix(b.Email, q)
	if aEmail != bEmail {
		return aEmail
	}

	if a.Frequency != b.Frequency {
		return a.Frequency > b.Frequency
	}
	return a.LastUsed.After(b.LastUsed)
}
