package suggest

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func rankEmails(query string, entries []ContactSuggestion, limit int) []string {
	ranked := Rank(query, entries, limit)
	out := make([]string, len(ranked))
	for i, e := range ranked {
		out[i] = e.Email
	}
	return out
}

func TestRankEmptyQueryMatchesNothing(t *testing.T) {
	now := time.Now()
	entries := []ContactSuggestion{
		{Email: "a@x.com", Frequency: 1, LastUsed: now},
		{Email: "b@x.com", Frequency: 1, LastUsed: now},
	}
	for _, q := range []string{"", "   ", "\t\n"} {
		if got := Rank(q, entries, DefaultLimit); len(got) != 0 {
			t.Errorf("Rank(%q) returned %d entries; want 0", q, len(got))
		}
	}
}

func TestRankSubstringFilter(t *testing.T) {
	now := time.Now()
	entries := []ContactSuggestion{
		{Email: "alice@corp.com", Name: "Alice Smith", Frequency: 1, LastUsed: now},
		{Email: "bob@corp.com", Frequency: 1, LastUsed: now},
		{Email: "carol@other.net", Name: "Carol", Frequency: 1, LastUsed: now},
	}

	tests := []struct {
		query string
		want  int
	}{
		{"alice", 1},   // email substring
		{"Smith", 1},   // name substring, case-insensitive
		{"corp", 2},    // domain substring
		{"o", 3},       // bob, carol, corp.com all contain o
		{"zzz", 0},
	}
	for _, tc := range tests {
		if got := Rank(tc.query, entries, DefaultLimit); len(got) != tc.want {
			t.Errorf("Rank(%q) matched %d entries; want %d", tc.query, len(got), tc.want)
		}
	}
}

// A name-prefix match must outrank a higher-frequency entry: the cascade
// consults frequency only when neither name nor email prefix decides.
func TestRankNamePrefixPrecedence(t *testing.T) {
	tA := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tB := tA.Add(time.Hour)
	entries := []ContactSuggestion{
		{Email: "johnny@y.com", Frequency: 10, LastUsed: tB},
		{Email: "john@x.com", Name: "John Smith", Frequency: 3, LastUsed: tA},
	}

	got := rankEmails("john", entries, DefaultLimit)
	want := []string{"john@x.com", "johnny@y.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank(\"john\") = %v; want %v", got, want)
	}
}

// When both emails share the query prefix and neither has a name, the
// prefix criteria are not decisive and frequency wins.
func TestRankFrequencyTieBreak(t *testing.T) {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []ContactSuggestion{
		{Email: "a@x.com", Frequency: 2, LastUsed: at},
		{Email: "ab@x.com", Frequency: 5, LastUsed: at},
	}

	got := rankEmails("a", entries, DefaultLimit)
	want := []string{"ab@x.com", "a@x.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank(\"a\") = %v; want %v", got, want)
	}
}

func TestRankEmailPrefixPrecedence(t *testing.T) {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []ContactSuggestion{
		{Email: "team-ed@x.com", Frequency: 50, LastUsed: at},
		{Email: "ed@y.com", Frequency: 1, LastUsed: at},
	}

	got := rankEmails("ed", entries, DefaultLimit)
	want := []string{"ed@y.com", "team-ed@x.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank(\"ed\") = %v; want %v", got, want)
	}
}

func TestRankRecencyLastResort(t *testing.T) {
	early := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	entries := []ContactSuggestion{
		{Email: "a1@x.com", Frequency: 3, LastUsed: early},
		{Email: "a2@x.com", Frequency: 3, LastUsed: late},
	}

	got := rankEmails("a", entries, DefaultLimit)
	want := []string{"a2@x.com", "a1@x.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank(\"a\") = %v; want %v", got, want)
	}
}

func TestRankCap(t *testing.T) {
	now := time.Now()
	var entries []ContactSuggestion
	for i := 0; i < 40; i++ {
		entries = append(entries, ContactSuggestion{
			Email:     fmt.Sprintf("user%02d@x.com", i),
			Frequency: i + 1,
			LastUsed:  now,
		})
	}

	if got := len(Rank("user", entries, DefaultLimit)); got != DefaultLimit {
		t.Errorf("len(Rank) = %d; want %d", got, DefaultLimit)
	}
	if got := len(Rank("user", entries, 3)); got != 3 {
		t.Errorf("len(Rank limit 3) = %d; want 3", got)
	}
	// Zero limit falls back to the default cap.
	if got := len(Rank("user", entries, 0)); got != DefaultLimit {
		t.Errorf("len(Rank limit 0) = %d; want %d", got, DefaultLimit)
	}
}

func TestRankDeterminism(t *testing.T) {
	now := time.Now()
	var entries []ContactSuggestion
	for i := 0; i < 20; i++ {
		entries = append(entries, ContactSuggestion{
			Email:     fmt.Sprintf("dup%02d@x.com", i),
			Frequency: 5, // all tied, order must still be stable
			LastUsed:  now,
		})
	}

	first := rankEmails("dup", entries, DefaultLimit)
	for i := 0; i < 10; i++ {
		if got := rankEmails("dup", entries, DefaultLimit); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced different order: %v vs %v", i, got, first)
		}
	}
}

func TestRankDoesNotMutateSnapshot(t *testing.T) {
	now := time.Now()
	entries := []ContactSuggestion{
		{Email: "b@x.com", Frequency: 1, LastUsed: now},
		{Email: "a@x.com", Frequency: 2, LastUsed: now},
	}
	_ = Rank("x.com", entries, DefaultLimit)

	if entries[0].Email != "b@x.com" || entries[1].Email != "a@x.com" {
		t.Error("Rank reordered the caller's slice")
	}
}

func TestRankQueryIsTrimmedAndFolded(t *testing.T) {
	now := time.Now()
	entries := []ContactSuggestion{
		{Email: "alice@x.com", Name: "Alice", Frequency: 1, LastUsed: now},
	}
	if got := len(Rank("  ALICE ", entries, DefaultLimit)); got != 1 {
		t.Errorf("mixed-case padded query matched %d entries; want 1", got)
	}
}
