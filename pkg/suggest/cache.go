package suggest

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// DefaultTTL is how long a populated snapshot is served before a query
// considers it stale.
const DefaultTTL = 300 * time.Second

// Cache owns the current suggestion snapshot and its staleness clock.
// Entries live in a patricia trie keyed by normalized email, which gives
// dedup by construction. All access is serialized through one RWMutex so a
// rebuild can never replace the trie under a running query.
type Cache struct {
	trie        *patricia.Trie
	count       int
	lastRebuild time.Time
	ttl         time.Duration
	mu          sync.RWMutex
}

// NewCache creates an empty cache. A non-positive ttl falls back to
// DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		trie: patricia.NewTrie(),
		ttl:  ttl,
	}
}

// IsStale reports whether the snapshot needs a rebuild before serving:
// empty caches are always stale, populated ones go stale once the TTL
// elapses. Staleness is checked lazily by callers, not by a timer.
func (c *Cache) IsStale(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.count == 0 {
		return true
	}
	return now.Sub(c.lastRebuild) > c.ttl
}

// Snapshot returns copies of all entries ordered by frequency, then by most
// recent use. Callers own the returned slice; mutating it never touches the
// cache.
func (c *Cache) Snapshot() []ContactSuggestion {
	c.mu.RLock()
	out := make([]ContactSuggestion, 0, c.count)
	err := c.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		out = append(out, *(item.(*ContactSuggestion)))
		return nil
	})
	c.mu.RUnlock()
	if err != nil {
		log.Errorf("Error visiting suggestion trie: %v", err)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].LastUsed.After(out[j].LastUsed)
	})
	return out
}

// Replace wholesale-swaps the mapping and resets the staleness clock.
// A rebuild is authoritative: entries absent from newEntries are gone,
// whatever their previous frequency.
func (c *Cache) Replace(newEntries map[string]*ContactSuggestion, now time.Time) {
	trie := patricia.NewTrie()
	count := 0
	for email, entry := range newEntries {
		if !strings.Contains(email, "@") {
			continue
		}
		trie.Insert(patricia.Prefix(email), entry)
		count++
	}

	c.mu.Lock()
	c.trie = trie
	c.count = count
	c.lastRebuild = now
	c.mu.Unlock()

	log.Debugf("Replaced suggestion snapshot: %d entries", count)
}

// Upsert merges one usage observation. An existing entry gains frequency
// and keeps the later of the two timestamps; a new entry starts at
// frequency 1 with manual provenance. Upsert does not touch the staleness
// clock: recording a use is not a rebuild.
func (c *Cache) Upsert(email, name string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item := c.trie.Get(patricia.Prefix(email)); item != nil {
		entry := item.(*ContactSuggestion)
		entry.Frequency++
		if at.After(entry.LastUsed) {
			entry.LastUsed = at
		}
		return
	}

	c.trie.Insert(patricia.Prefix(email), &ContactSuggestion{
		Email:     email,
		Name:      name,
		Frequency: 1,
		LastUsed:  at,
		Source:    SourceManual,
	})
	c.count++
}

// ManualEntries returns copies of entries that were first created by usage
// events. A rebuild cannot re-derive these from the record collections.
func (c *Cache) ManualEntries() []ContactSuggestion {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []ContactSuggestion
	err := c.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		entry := item.(*ContactSuggestion)
		if entry.Source == SourceManual {
			out = append(out, *entry)
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting suggestion trie: %v", err)
	}
	return out
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count
}

// Stats returns counters about the current snapshot.
func (c *Cache) Stats() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := map[string]int{
		"entries":    c.count,
		"ttlSeconds": int(c.ttl / time.Second),
	}
	if !c.lastRebuild.IsZero() {
		stats["snapshotAgeSeconds"] = int(time.Since(c.lastRebuild) / time.Second)
	}
	return stats
}
