package suggest

import (
	"strings"
	"time"
)

// MailRecord is the engine's view of one already-loaded mail message.
// Outbound marks messages the account holder sent.
type MailRecord struct {
	From     string
	To       []string
	Outbound bool
	Date     time.Time
}

// ConversationRecord is the engine's view of one conversation thread.
type ConversationRecord struct {
	Participants []string
	LastActivity time.Time
}

// Rebuild folds mail and conversation records into a deduplicated mapping
// keyed by normalized email. The sender of each mail record is observed
// with the record's directional provenance (received for inbound, sent for
// outbound); recipients of outbound records are observed with sent;
// conversation participants with conversation at the thread's last
// activity time.
//
// Rebuild cannot fail: it works purely on in-memory collections, and empty
// inputs produce an empty mapping.
func Rebuild(mail []MailRecord, convs []ConversationRecord) map[string]*ContactSuggestion {
	entries := make(map[string]*ContactSuggestion)

	for _, m := range mail {
		senderSource := SourceReceived
		if m.Outbound {
			senderSource = SourceSent
		}
		observe(entries, m.From, m.Date, senderSource)

		if m.Outbound {
			for _, rcpt := range m.To {
				observe(entries, rcpt, m.Date, SourceSent)
			}
		}
	}

	for _, cv := range convs {
		for _, participant := range cv.Participants {
			observe(entries, participant, cv.LastActivity, SourceConversation)
		}
	}
	return entries
}

// observe merges one sighting of an address into the mapping. Repeat
// sightings bump the frequency and keep the latest timestamp; the name and
// the source stay as first written. Addresses without an '@' after
// normalization are dropped silently.
func observe(entries map[string]*ContactSuggestion, raw string, at time.Time, src Source) {
	email, name := NormalizeAddress(raw)
	if !strings.Contains(email, "@") {
		return
	}

	if existing, ok := entries[email]; ok {
		existing.Frequency++
		if at.After(existing.LastUsed) {
			existing.LastUsed = at
		}
		return
	}

	entries[email] = &ContactSuggestion{
		Email:     email,
		Name:      name,
		Frequency: 1,
		LastUsed:  at,
		Source:    src,
	}
}
