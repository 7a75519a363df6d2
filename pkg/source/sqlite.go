// Package source loads mail and conversation records from the mail
// client's local database. It is the collaborator that owns the I/O; the
// suggest engine only ever sees already-loaded collections.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bastiangx/contactserve/pkg/suggest"

	_ "modernc.org/sqlite"
)

// Message is one stored mail message row.
type Message struct {
	ID       string
	From     string
	To       []string
	Outbound bool
	Date     time.Time
}

// Conversation is one stored conversation thread row.
type Conversation struct {
	ID           string
	Participants []string
	LastActivity time.Time
}

// SQLiteSource implements suggest.RecordSource backed by a local SQLite
// database owned by the mail client.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLiteSource opens (or creates) the database at the given path and
// runs migrations.
func NewSQLiteSource(dbPath string) (*SQLiteSource, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteSource{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id        TEXT PRIMARY KEY,
	from_addr TEXT NOT NULL,
	to_addrs  TEXT NOT NULL DEFAULT '',
	outbound  INTEGER NOT NULL DEFAULT 0,
	date_unix INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS conversations (
	id                 TEXT PRIMARY KEY,
	participants       TEXT NOT NULL DEFAULT '',
	last_activity_unix INTEGER NOT NULL DEFAULT 0
);
`
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Address lists are stored newline-joined; commas occur inside display
// names so they cannot be the separator.
func joinAddrs(addrs []string) string {
	return strings.Join(addrs, "\n")
}

func splitAddrs(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, "\n")
}

// UpsertMessages inserts or updates message rows.
func (s *SQLiteSource) UpsertMessages(ctx context.Context, msgs []Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, from_addr, to_addrs, outbound, date_unix)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			from_addr = excluded.from_addr,
			to_addrs  = excluded.to_addrs,
			outbound  = excluded.outbound,
			date_unix = excluded.date_unix
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range msgs {
		outbound := 0
		if m.Outbound {
			outbound = 1
		}
		_, err := stmt.ExecContext(ctx, m.ID, m.From, joinAddrs(m.To), outbound, m.Date.Unix())
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpsertConversations inserts or updates conversation rows.
func (s *SQLiteSource) UpsertConversations(ctx context.Context, convs []Conversation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO conversations (id, participants, last_activity_unix)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			participants       = excluded.participants,
			last_activity_unix = excluded.last_activity_unix
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range convs {
		_, err := stmt.ExecContext(ctx, c.ID, joinAddrs(c.Participants), c.LastActivity.Unix())
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MailRecords loads every stored message as an aggregation input.
func (s *SQLiteSource) MailRecords(ctx context.Context) ([]suggest.MailRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT from_addr, to_addrs, outbound, date_unix FROM messages")
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var records []suggest.MailRecord
	for rows.Next() {
		var (
			from     string
			toAddrs  string
			outbound int
			dateUnix int64
		)
		if err := rows.Scan(&from, &toAddrs, &outbound, &dateUnix); err != nil {
			return nil, err
		}
		records = append(records, suggest.MailRecord{
			From:     from,
			To:       splitAddrs(toAddrs),
			Outbound: outbound != 0,
			Date:     time.Unix(dateUnix, 0).UTC(),
		})
	}
	return records, rows.Err()
}

// ConversationRecords loads every stored conversation as an aggregation
// input.
func (s *SQLiteSource) ConversationRecords(ctx context.Context) ([]suggest.ConversationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT participants, last_activity_unix FROM conversations")
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var records []suggest.ConversationRecord
	for rows.Next() {
		var (
			participants string
			lastUnix     int64
		)
		if err := rows.Scan(&participants, &lastUnix); err != nil {
			return nil, err
		}
		records = append(records, suggest.ConversationRecord{
			Participants: splitAddrs(participants),
			LastActivity: time.Unix(lastUnix, 0).UTC(),
		})
	}
	return records, rows.Err()
}

// CountMessages returns the number of stored messages.
func (s *SQLiteSource) CountMessages(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&count)
	return count, err
}
