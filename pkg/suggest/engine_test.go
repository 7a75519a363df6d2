package suggest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource is an in-memory RecordSource for engine tests.
type stubSource struct {
	mu    sync.Mutex
	mail  []MailRecord
	convs []ConversationRecord
	err   error
	loads int
}

func (s *stubSource) MailRecords(ctx context.Context) ([]MailRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.mail, nil
}

func (s *stubSource) ConversationRecords(ctx context.Context) ([]ConversationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.convs, nil
}

func (s *stubSource) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func TestEngineSearchRebuildsWhenStale(t *testing.T) {
	src := &stubSource{
		mail: []MailRecord{{From: "Alice <alice@x.com>", Date: time.Now()}},
	}
	e := NewEngine(src, Options{})

	got := e.Search("ali")
	require.Len(t, got, 1)
	assert.Equal(t, "alice@x.com", got[0].Email)
	assert.Equal(t, 1, src.loadCount(), "first search rebuilds the empty cache")

	e.Search("ali")
	assert.Equal(t, 1, src.loadCount(), "fresh snapshot must not trigger another rebuild")
}

func TestEngineSearchEmptyQuery(t *testing.T) {
	src := &stubSource{
		mail: []MailRecord{{From: "alice@x.com", Date: time.Now()}},
	}
	e := NewEngine(src, Options{})
	assert.Empty(t, e.Search(""))
	assert.Empty(t, e.Search("   "))
}

func TestEngineRecordUsage(t *testing.T) {
	e := NewEngine(&stubSource{}, Options{})
	// Populate so a search does not trip the staleness rebuild afterwards.
	require.NoError(t, e.ForceRefresh())

	e.RecordUsage("Pat <pat@x.com>", "")
	got := e.Search("pat")
	require.Len(t, got, 1)
	assert.Equal(t, "pat@x.com", got[0].Email)
	assert.Equal(t, "Pat", got[0].Name, "name falls back to the one extracted from the address")
	assert.Equal(t, SourceManual, got[0].Source)

	e.RecordUsage("not-an-email", "Nobody")
	assert.Empty(t, e.Search("nobody"))
}

func TestEngineForceRefreshWholesaleReplace(t *testing.T) {
	src := &stubSource{
		mail: []MailRecord{{From: "alice@x.com", Date: time.Now()}},
	}
	e := NewEngine(src, Options{})
	require.NoError(t, e.ForceRefresh())

	e.RecordUsage("manual@y.com", "")
	require.Len(t, e.Search("manual"), 1)

	// Default behavior: the rebuild is authoritative and the manual entry
	// is not re-derivable from the records, so it is gone.
	require.NoError(t, e.ForceRefresh())
	assert.Empty(t, e.Search("manual"))
}

func TestEnginePreserveManual(t *testing.T) {
	src := &stubSource{
		mail: []MailRecord{{From: "alice@x.com", Date: time.Now()}},
	}
	e := NewEngine(src, Options{PreserveManual: true})
	require.NoError(t, e.ForceRefresh())

	e.RecordUsage("manual@y.com", "Manny")
	require.NoError(t, e.ForceRefresh())

	got := e.Search("manual")
	require.Len(t, got, 1)
	assert.Equal(t, "Manny", got[0].Name)
	// The derived entry is still there too.
	assert.Len(t, e.Search("alice"), 1)
}

func TestEngineSourceErrorKeepsSnapshot(t *testing.T) {
	src := &stubSource{
		mail: []MailRecord{{From: "alice@x.com", Date: time.Now()}},
	}
	e := NewEngine(src, Options{})
	require.NoError(t, e.ForceRefresh())

	src.mu.Lock()
	src.err = errors.New("db locked")
	src.mu.Unlock()

	assert.Error(t, e.ForceRefresh())
	assert.Len(t, e.Search("alice"), 1, "failed rebuild keeps serving the old snapshot")
}

func TestEngineSubscriptions(t *testing.T) {
	src := &stubSource{
		mail: []MailRecord{{From: "alice@x.com", Date: time.Now()}},
	}
	e := NewEngine(src, Options{})
	changed := e.SubscribeSuggestions()
	loading := e.SubscribeLoading()

	require.NoError(t, e.ForceRefresh())

	select {
	case <-changed:
	default:
		t.Error("no suggestions-changed signal after rebuild")
	}
	select {
	case v := <-loading:
		assert.False(t, v, "latest loading state after a finished rebuild is false")
	default:
		t.Error("no loading signal after rebuild")
	}

	e.RecordUsage("pat@x.com", "")
	select {
	case <-changed:
	default:
		t.Error("no suggestions-changed signal after usage event")
	}
}

func TestEngineNotifyRecordsChanged(t *testing.T) {
	src := &stubSource{
		mail: []MailRecord{{From: "alice@x.com", Date: time.Now()}},
	}
	e := NewEngine(src, Options{})
	changed := e.SubscribeSuggestions()

	e.NotifyRecordsChanged()

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("async rebuild did not complete")
	}
	assert.GreaterOrEqual(t, src.loadCount(), 1)
}

func TestEngineStats(t *testing.T) {
	src := &stubSource{
		mail: []MailRecord{{From: "alice@x.com", Date: time.Now()}},
	}
	e := NewEngine(src, Options{Limit: 5})
	require.NoError(t, e.ForceRefresh())

	stats := e.Stats()
	assert.Equal(t, 1, stats["entries"])
	assert.Equal(t, 5, stats["limit"])
	assert.Equal(t, 0, stats["loading"])
}
