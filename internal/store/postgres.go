package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/133matt/ChatServer/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	body TEXT NOT NULL DEFAULT '',
	media TEXT NOT NULL DEFAULT '',
	media_kind TEXT NOT NULL DEFAULT '',
	device TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT '',
	source_title TEXT NOT NULL DEFAULT '',
	ts BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_ts ON messages(ts);
`

// PostgresStore persists messages in a PostgreSQL table behind a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pooled PostgreSQL store and bootstraps the
// schema. The pool is capped so an exhausted backend surfaces as a bounded
// wait rather than unbounded queueing.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = 20
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.ConnConfig.ConnectTimeout = 10 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Append inserts the message, returning the stored row.
func (s *PostgresStore) Append(ctx context.Context, msg *models.Message) (*models.Message, error) {
	stored := *msg
	if stored.ID == "" {
		stored.ID = NewID()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, username, body, media, media_kind, device, source_url, source_title, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, username, body, media, media_kind, device, source_url, source_title, ts
	`, stored.ID, stored.Username, stored.Text, stored.Media, stored.MediaKind,
		stored.Device, stored.SourceURL, stored.SourceTitle, stored.Timestamp).Scan(
		&stored.ID,
		&stored.Username,
		&stored.Text,
		&stored.Media,
		&stored.MediaKind,
		&stored.Device,
		&stored.SourceURL,
		&stored.SourceTitle,
		&stored.Timestamp,
	)
	if err != nil {
		return nil, unavailable(err)
	}
	return &stored, nil
}

// List returns the most recent limit messages, oldest first. The query walks
// the timestamp index descending and the result is reversed for delivery.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, username, body, media, media_kind, device, source_url, source_title, ts
		FROM messages
		ORDER BY ts DESC, id DESC
		LIMIT $1
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
func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return false, unavailable(err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteAll removes every message.
func (s *PostgresStore) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM messages`)
	if err != nil {
		return 0, unavailable(err)
	}
	return tag.RowsAffected(), nil
}

// PurgeBefore removes messages older than cutoff.
func (s *PostgresStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE ts < $1`, cutoff.UnixMilli())
	if err != nil {
		return 0, unavailable(err)
	}
	return tag.RowsAffected(), nil
}

// reverse flips a descending query result into delivery order.
func reverse(msgs []models.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
