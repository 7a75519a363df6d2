package suggest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures an Engine. Zero values fall back to the package
// defaults.
type Options struct {
	// TTL is how long a snapshot stays fresh. Defaults to DefaultTTL.
	TTL time.Duration
	// Limit caps search results. Defaults to DefaultLimit.
	Limit int
	// PreserveManual carries manually recorded entries across rebuilds
	// when the record collections cannot re-derive them. Off by default:
	// a rebuild is wholesale-authoritative.
	PreserveManual bool
}

// Engine ties the cache, the aggregator and the ranker together behind the
// ISuggester surface. It is an explicitly owned object: whoever composes
// the application creates it, hands it a RecordSource, and calls
// NotifyRecordsChanged when the source data changes.
type Engine struct {
	cache          *Cache
	source         RecordSource
	limit          int
	preserveManual bool

	// rebuildMu serializes rebuilds. Overlapping triggers are allowed;
	// the last writer wins since a rebuild is deterministic for the same
	// source collections.
	rebuildMu sync.Mutex
	loading   atomic.Bool

	subMu      sync.Mutex
	changedSub []chan struct{}
	loadingSub []chan bool
}

// NewEngine creates an engine over the given record source.
func NewEngine(source RecordSource, opts Options) *Engine {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Engine{
		cache:          NewCache(opts.TTL),
		source:         source,
		limit:          limit,
		preserveManual: opts.PreserveManual,
	}
}

// Search answers an autocomplete query from the current snapshot,
// rebuilding first when the snapshot is stale. A failed rebuild is not
// fatal: the previous snapshot keeps serving and the error is logged.
func (e *Engine) Search(query string) []ContactSuggestion {
	if e.cache.IsStale(time.Now()) {
		if err := e.rebuild(); err != nil {
			log.Warnf("Serving stale suggestions: %v", err)
		}
	}
	return Rank(query, e.cache.Snapshot(), e.limit)
}

// RecordUsage merges one usage observation into the cache, bypassing the
// aggregator. Addresses that do not normalize to something with an '@' are
// ignored.
func (e *Engine) RecordUsage(address, name string) {
	email, extracted := NormalizeAddress(address)
	if !strings.Contains(email, "@") {
		log.Debugf("Ignoring usage event for unparseable address %q", address)
		return
	}
	if name == "" {
		name = extracted
	}
	e.cache.Upsert(email, name, time.Now())
	e.notifyChanged()
}

// ForceRefresh rebuilds the cache unconditionally, regardless of
// staleness.
func (e *Engine) ForceRefresh() error {
	return e.rebuild()
}

// NotifyRecordsChanged signals that the source collections changed. The
// composition root calls this instead of the engine subscribing to any
// process-wide event bus. The rebuild runs asynchronously.
func (e *Engine) NotifyRecordsChanged() {
	go func() {
		if err := e.rebuild(); err != nil {
			log.Errorf("Rebuild after records change: %v", err)
		}
	}()
}

// Loading reports whether a rebuild is currently in flight.
func (e *Engine) Loading() bool {
	return e.loading.Load()
}

// SubscribeSuggestions returns a channel that receives a signal whenever
// the suggestion set changes. Signals coalesce; a slow consumer never
// blocks the engine.
func (e *Engine) SubscribeSuggestions() <-chan struct{} {
	ch := make(chan struct{}, 1)
	e.subMu.Lock()
	e.changedSub = append(e.changedSub, ch)
	e.subMu.Unlock()
	return ch
}

// SubscribeLoading returns a channel that receives the loading flag as it
// toggles. A stale unread value is replaced rather than queued.
func (e *Engine) SubscribeLoading() <-chan bool {
	ch := make(chan bool, 1)
	e.subMu.Lock()
	e.loadingSub = append(e.loadingSub, ch)
	e.subMu.Unlock()
	return ch
}

// Stats returns engine counters, merged with the cache's.
func (e *Engine) Stats() map[string]int {
	stats := e.cache.Stats()
	stats["limit"] = e.limit
	if e.loading.Load() {
		stats["loading"] = 1
	} else {
		stats["loading"] = 0
	}
	return stats
}

// rebuild loads both record collections, aggregates them and replaces the
// snapshot. Serialized so overlapping triggers degrade to last-writer-wins
// rather than interleaving with the swap.
func (e *Engine) rebuild() error {
	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()

	e.setLoading(true)
	defer e.setLoading(false)

	ctx := context.Background()
	mail, err := e.source.MailRecords(ctx)
	if err != nil {
		return fmt.Errorf("load mail records: %w", err)
	}
	convs, err := e.source.ConversationRecords(ctx)
	if err != nil {
		return fmt.Errorf("load conversation records: %w", err)
	}

	entries := Rebuild(mail, convs)

	if e.preserveManual {
		for _, m := range e.cache.ManualEntries() {
			if _, ok := entries[m.Email]; !ok {
				kept := m
				entries[m.Email] = &kept
			}
		}
	}

	e.cache.Replace(entries, time.Now())
	log.Debugf("Rebuilt suggestion cache: %d entries from %d mail and %d conversation records",
		len(entries), len(mail), len(convs))
	e.notifyChanged()
	return nil
}

func (e *Engine) notifyChanged() {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.changedSub {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (e *Engine) setLoading(v bool) {
	e.loading.Store(v)
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.loadingSub {
		// Drop the unread stale value so the latest state is what lands.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}
