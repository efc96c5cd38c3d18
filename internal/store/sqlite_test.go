package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/133matt/ChatServer/internal/models"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	msg, err := s.Append(ctx, &models.Message{
		Username:    "alice",
		Text:        "hi",
		Media:       "https://media.example.com/a.png",
		MediaKind:   models.MediaURL,
		Device:      "web",
		SourceURL:   "https://youtu.be/x",
		SourceTitle: "clip",
		Timestamp:   1700000000000,
	})
	require.NoError(t, err)
	require.NotEmpty(t, msg.ID)

	msgs, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, *msg, msgs[0])
}

func TestSQLiteListOrderAndLimit(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for _, ts := range []int64{300, 100, 200} {
		_, err := s.Append(ctx, &models.Message{Username: "u", Text: "m", Timestamp: ts})
		require.NoError(t, err)
	}

	msgs, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, int64(100), msgs[0].Timestamp)
	assert.Equal(t, int64(300), msgs[2].Timestamp)

	msgs, err = s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(200), msgs[0].Timestamp)
	assert.Equal(t, int64(300), msgs[1].Timestamp)
}

func TestSQLiteDeleteAndPurge(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	old, err := s.Append(ctx, &models.Message{Username: "u", Text: "old", Timestamp: 1000})
	require.NoError(t, err)
	_, err = s.Append(ctx, &models.Message{Username: "u", Text: "new", Timestamp: time.Now().UnixMilli()})
	require.NoError(t, err)

	ok, err := s.Delete(ctx, "missing-id")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(ctx, old.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = s.Append(ctx, &models.Message{Username: "u", Text: "old", Timestamp: 1000})
	require.NoError(t, err)
	count, err = s.PurgeBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
