package source

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func testSource(t *testing.T) *SQLiteSource {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "records.db")
	s, err := NewSQLiteSource(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteSource: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndLoadMessages(t *testing.T) {
	s := testSource(t)
	ctx := context.Background()

	date := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	msgs := []Message{
		{ID: "1", From: "Alice <alice@x.com>", Date: date},
		{ID: "2", From: "me@x.com", To: []string{"bob@y.com", "Carol <carol@z.com>"}, Outbound: true, Date: date.Add(time.Hour)},
	}
	if err := s.UpsertMessages(ctx, msgs); err != nil {
		t.Fatalf("UpsertMessages: %v", err)
	}

	count, err := s.CountMessages(ctx)
	if err != nil {
		t.Fatalf("CountMessages: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 messages, got %d", count)
	}

	records, err := s.MailRecords(ctx)
	if err != nil {
		t.Fatalf("MailRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	var outbound, inbound int
	for _, r := range records {
		if r.Outbound {
			outbound++
			if len(r.To) != 2 {
				t.Errorf("outbound record has %d recipients; want 2", len(r.To))
			}
		} else {
			inbound++
			if r.From != "Alice <alice@x.com>" {
				t.Errorf("inbound from = %q", r.From)
			}
			if !r.Date.Equal(date) {
				t.Errorf("inbound date = %v; want %v", r.Date, date)
			}
		}
	}
	if outbound != 1 || inbound != 1 {
		t.Errorf("outbound=%d inbound=%d; want 1 and 1", outbound, inbound)
	}
}

func TestUpsertMessagesIsIdempotent(t *testing.T) {
	s := testSource(t)
	ctx := context.Background()

	msg := Message{ID: "1", From: "a@b.com", Date: time.Now()}
	for i := 0; i < 3; i++ {
		if err := s.UpsertMessages(ctx, []Message{msg}); err != nil {
			t.Fatalf("UpsertMessages: %v", err)
		}
	}
	count, err := s.CountMessages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 message after repeat upserts, got %d", count)
	}
}

func TestConversations(t *testing.T) {
	s := testSource(t)
	ctx := context.Background()

	last := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	convs := []Conversation{
		{ID: "c1", Participants: []string{"dave@x.com", "Erin <erin@y.com>"}, LastActivity: last},
	}
	if err := s.UpsertConversations(ctx, convs); err != nil {
		t.Fatalf("UpsertConversations: %v", err)
	}

	records, err := s.ConversationRecords(ctx)
	if err != nil {
		t.Fatalf("ConversationRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(records))
	}
	if len(records[0].Participants) != 2 {
		t.Errorf("participants = %v; want 2 entries", records[0].Participants)
	}
	if !records[0].LastActivity.Equal(last) {
		t.Errorf("last activity = %v; want %v", records[0].LastActivity, last)
	}
}

func TestEmptyDatabase(t *testing.T) {
	s := testSource(t)
	ctx := context.Background()

	mail, err := s.MailRecords(ctx)
	if err != nil {
		t.Fatalf("MailRecords: %v", err)
	}
	if len(mail) != 0 {
		t.Errorf("expected no mail records, got %d", len(mail))
	}

	convs, err := s.ConversationRecords(ctx)
	if err != nil {
		t.Fatalf("ConversationRecords: %v", err)
	}
	if len(convs) != 0 {
		t.Errorf("expected no conversation records, got %d", len(convs))
	}
}
