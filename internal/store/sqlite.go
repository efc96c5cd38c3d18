package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/133matt/ChatServer/internal/models"
)

// SQLiteStore persists messages in a local SQLite file. Single-binary
// deployments use it where running PostgreSQL is overkill.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) a SQLite store at dbPath.
// If dbPath is empty, defaults to "./data/chatserver.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/chatserver.db"
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates the messages table if it doesn't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		media TEXT NOT NULL DEFAULT '',
		media_kind TEXT NOT NULL DEFAULT '',
		device TEXT NOT NULL DEFAULT '',
		source_url TEXT NOT NULL DEFAULT '',
		source_title TEXT NOT NULL DEFAULT '',
		ts INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_ts ON messages(ts);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Append inserts the message.
func (s *SQLiteStore) Append(ctx context.Context, msg *models.Message) (*models.Message, error) {
	stored := *msg
	if stored.ID == "" {
		stored.ID = NewID()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, username, body, media, media_kind, device, source_url, source_title, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, stored.ID, stored.Username, stored.Text, stored.Media, stored.MediaKind,
		stored.Device, stored.SourceURL, stored.SourceTitle, stored.Timestamp)
	if err != nil {
		return nil, unavailable(err)
	}
	return &stored, nil
}

// List returns the most recent limit messages, oldest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, body, media, media_kind, device, source_url, source_title, ts
		FROM messages
		ORDER BY ts DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID,
			&msg.Username,
			&msg.Text,
			&msg.Media,
			&msg.MediaKind,
			&msg.Device,
			&msg.SourceURL,
			&msg.SourceTitle,
			&msg.Timestamp,
		)
		if err != nil {
			return nil, unavailable(err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}

	reverse(messages)
	return messages, nil
}

// Delete removes one message by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return false, unavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable(err)
	}
	return n > 0, nil
}

// DeleteAll removes every message.
func (s *SQLiteStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		return 0, unavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

// PurgeBefore removes messages older than cutoff.
func (s *SQLiteStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE ts < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, unavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}
