package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/comigor/mindcare-go/internal/conversation"
	"github.com/comigor/mindcare-go/internal/logger"
)

// SQLiteStore keeps messages in an in-memory SQLite database.
// Every connection to ":memory:" opens a distinct database, so the pool is
// pinned to a single connection.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the in-memory database and creates the messages table.
func OpenSQLite(ctx context.Context) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS messages (
        seq INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        message_id TEXT NOT NULL,
        sender TEXT NOT NULL,
        content TEXT NOT NULL,
        created_at INTEGER NOT NULL
    );`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create messages table: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS messages_session ON messages (session_id, seq);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create messages index: %w", err)
	}
	logger.L.Info("sqlite history initialized", "dsn", ":memory:")
	return &SQLiteStore{db: db}, nil
}

// Append inserts msg after every message already stored for the session.
func (s *SQLiteStore) Append(ctx context.Context, sessionID string, msg conversation.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, message_id, sender, content, created_at) VALUES (?,?,?,?,?);`,
		sessionID, msg.ID, string(msg.Sender), msg.Text, msg.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// List returns the session's messages in insertion order.
func (s *SQLiteStore) List(ctx context.Context, sessionID string) ([]conversation.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, sender, content, created_at FROM messages WHERE session_id = ? ORDER BY seq ASC;`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	out := []conversation.Message{}
	for rows.Next() {
		var (
			m      conversation.Message
			sender string
			nanos  int64
		)
		if err := rows.Scan(&m.ID, &sender, &m.Text, &nanos); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Sender = conversation.Sender(sender)
		m.Timestamp = time.Unix(0, nanos).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// Clear deletes every message of the session.
func (s *SQLiteStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?;`, sessionID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

// Close releases the database; its contents are gone afterwards.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
