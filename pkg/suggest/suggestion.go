package suggest

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Source identifies the signal that first created a suggestion entry.
// It is set on first observation and never updated by later merges.
type Source int

const (
	SourceSent Source = iota
	SourceReceived
	SourceConversation
	SourceManual
)

func (s Source) String() string {
	switch s {
	case SourceSent:
		return "sent"
	case SourceReceived:
		return "received"
	case SourceConversation:
		return "conversation"
	case SourceManual:
		return "manual"
	}
	return "unknown"
}

// ContactSuggestion is one cache row per unique normalized address.
type ContactSuggestion struct {
	// Email is lowercase and trimmed; it is the dedup key.
	Email string
	// Name is the best-known display name. First write wins.
	Name string
	// Frequency counts observed occurrences. Never decreases between
	// rebuilds; a rebuild recomputes it from the raw records.
	Frequency int
	// LastUsed is the most recent observation time across all merges.
	LastUsed time.Time
	Source   Source
}

// Domain returns the part of the address after the last '@'.
func (c *ContactSuggestion) Domain() string {
	if i := strings.LastIndexByte(c.Email, '@'); i >= 0 {
		return c.Email[i+1:]
	}
	return ""
}

// DisplayName returns "Name <email>" when a name is known, the bare
// address otherwise.
func (c *ContactSuggestion) DisplayName() string {
	if c.Name != "" {
		return c.Name + " <" + c.Email + ">"
	}
	return c.Email
}

// Initials returns up to two uppercased initials, derived from the name
// when present and from the address local part otherwise.
func (c *ContactSuggestion) Initials() string {
	src := c.Name
	if src == "" {
		src = c.Email
		if i := strings.IndexByte(src, '@'); i >= 0 {
			src = src[:i]
		}
	}
	fields := strings.FieldsFunc(src, func(r rune) bool {
		return r == ' ' || r == '.' || r == '_' || r == '-'
	})
	var b strings.Builder
	for i, f := range fields {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(f)
		b.WriteString(strings.ToUpper(string(r)))
	}
	return b.String()
}
