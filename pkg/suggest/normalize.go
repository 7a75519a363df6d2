package suggest

import "strings"

// NormalizeAddress canonicalizes a raw address string into a lowercase
// lookup key and an optional display name. It understands the
// "Display Name <addr@domain>" form; anything before the first '<' (minus
// surrounding quotes) becomes the name candidate and the part up to '>'
// becomes the address. A candidate name is discarded when it is empty or
// when no real separation occurred.
//
// NormalizeAddress never fails: malformed input yields an address the
// aggregator will reject for lacking an '@'.
func NormalizeAddress(raw string) (email, name string) {
	trimmed := strings.TrimSpace(raw)
	addr := trimmed

	if i := strings.IndexByte(trimmed, '<'); i >= 0 {
		candidate := strings.TrimSpace(trimmed[:i])
		candidate = strings.Trim(candidate, `"'`)
		candidate = strings.TrimSpace(candidate)

		rest := trimmed[i+1:]
		if j := strings.IndexByte(rest, '>'); j >= 0 {
			rest = rest[:j]
		}
		addr = strings.TrimSpace(rest)

		if candidate != "" && candidate != trimmed {
			name = candidate
		}
	}
	return strings.ToLower(addr), name
}

// normalizeQuery lowercases and trims a search query.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
