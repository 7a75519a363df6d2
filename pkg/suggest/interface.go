// Package suggest is the core contact suggestion engine: it folds mail and
// conversation records into a deduplicated, time-bounded cache and answers
// autocomplete queries with a deterministic ranked result under a strict
// size cap.
package suggest

import "context"

// RecordSource supplies the already-loaded record collections the engine
// aggregates from. Implementations own all I/O; the engine itself never
// touches the network or disk.
type RecordSource interface {
	MailRecords(ctx context.Context) ([]MailRecord, error)
	ConversationRecords(ctx context.Context) ([]ConversationRecord, error)
}

// ISuggester defines the surface consumers program against.
type ISuggester interface {
	// Search answers an autocomplete query with a ranked, capped result.
	Search(query string) []ContactSuggestion

	// RecordUsage merges one resolved address into the cache.
	RecordUsage(address, name string)

	// ForceRefresh rebuilds the cache regardless of staleness.
	ForceRefresh() error

	// NotifyRecordsChanged signals that the source collections changed.
	NotifyRecordsChanged()

	// Stats returns counters about the engine state.
	Stats() map[string]int
}
