package ingest

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/133matt/ChatServer/internal/config"
	"github.com/133matt/ChatServer/internal/models"
	"github.com/133matt/ChatServer/internal/store"
)

func testLimits() config.Limits {
	return config.Limits{
		MaxUsernameLen:      50,
		MaxTextLen:          5000,
		MaxDeviceLen:        100,
		MaxInlineMediaBytes: 10 << 20,
		ListDefaultLimit:    50,
		ListMaxLimit:        200,
	}
}

func newTestPipeline(t *testing.T) (*Pipeline, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return New(st, testLimits()), st
}

func storeSize(t *testing.T, st *store.MemoryStore) int {
	t.Helper()
	msgs, err := st.List(context.Background(), 1000)
	require.NoError(t, err)
	return len(msgs)
}

func TestIngestValid(t *testing.T) {
	p, _ := newTestPipeline(t)

	msg, err := p.Ingest(context.Background(), Payload{
		Username:  "alice",
		Text:      "hi",
		Timestamp: json.RawMessage("1700000000000"),
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", msg.Username)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, int64(1700000000000), msg.Timestamp)
	assert.NotEmpty(t, msg.ID)
}

func TestIngestMissingUsername(t *testing.T) {
	p, st := newTestPipeline(t)

	for _, username := range []string{"", "   ", "\t\n"} {
		_, err := p.Ingest(context.Background(), Payload{Username: username, Text: "hi"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, CodeMissingField, verr.Code)
		assert.Equal(t, "username", verr.Field)
	}

	assert.Equal(t, 0, storeSize(t, st), "failed ingest must not write")
}

func TestIngestEmptyMessage(t *testing.T) {
	p, st := newTestPipeline(t)

	_, err := p.Ingest(context.Background(), Payload{Username: "bob"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeEmptyMessage, verr.Code)

	// Whitespace-only text doesn't count as content.
	_, err = p.Ingest(context.Background(), Payload{Username: "bob", Text: "   "})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeEmptyMessage, verr.Code)

	assert.Equal(t, 0, storeSize(t, st))
}

func TestIngestTruncatesNotRejects(t *testing.T) {
	p, _ := newTestPipeline(t)

	long := strings.Repeat("x", 6000)
	msg, err := p.Ingest(context.Background(), Payload{Username: "alice", Text: long})
	require.NoError(t, err)
	assert.Len(t, msg.Text, 5000)

	msg, err = p.Ingest(context.Background(), Payload{
		Username: strings.Repeat("u", 80),
		Text:     "hi",
	})
	require.NoError(t, err)
	assert.Len(t, msg.Username, 50)
}

func TestIngestTrimsWhitespace(t *testing.T) {
	p, _ := newTestPipeline(t)

	msg, err := p.Ingest(context.Background(), Payload{Username: "  alice  ", Text: "  hi  "})
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.Username)
	assert.Equal(t, "hi", msg.Text)
}

func TestIngestOversizedInlineMedia(t *testing.T) {
	limits := testLimits()
	limits.MaxInlineMediaBytes = 64
	st := store.NewMemoryStore()
	p := New(st, limits)

	_, err := p.Ingest(context.Background(), Payload{
		Username:  "alice",
		Media:     strings.Repeat("A", 200),
		MediaKind: models.MediaInline,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodePayloadTooLarge, verr.Code)
	assert.Equal(t, 0, storeSize(t, st))
}

func TestIngestTimestampDefaultsToNow(t *testing.T) {
	p, _ := newTestPipeline(t)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	msg, err := p.Ingest(context.Background(), Payload{Username: "alice", Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, fixed.UnixMilli(), msg.Timestamp)
}

func TestIngestTimestampFormats(t *testing.T) {
	p, _ := newTestPipeline(t)

	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{"epoch ms", "1700000000000", 1700000000000},
		{"rfc3339", `"2023-11-14T22:13:20Z"`, 1700000000000},
		{"rfc3339 offset", `"2023-11-14T23:13:20+01:00"`, 1700000000000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := p.Ingest(context.Background(), Payload{
				Username:  "alice",
				Text:      "hi",
				Timestamp: json.RawMessage(tc.raw),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, msg.Timestamp)
		})
	}
}

func TestIngestInvalidTimestamp(t *testing.T) {
	p, st := newTestPipeline(t)

	for _, raw := range []string{`"yesterday"`, `"2023-13-45"`, `-5`, `true`} {
		_, err := p.Ingest(context.Background(), Payload{
			Username:  "alice",
			Text:      "hi",
			Timestamp: json.RawMessage(raw),
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "raw=%s", raw)
		assert.Equal(t, CodeInvalidTimestamp, verr.Code)
	}

	assert.Equal(t, 0, storeSize(t, st))
}

func TestIngestRoundTrip(t *testing.T) {
	p, st := newTestPipeline(t)

	_, err := p.Ingest(context.Background(), Payload{
		Username:  "  carol ",
		Text:      " hello there ",
		Device:    "ios-app",
		Timestamp: json.RawMessage("1700000000000"),
	})
	require.NoError(t, err)

	msgs, err := st.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	got := msgs[0]
	assert.Equal(t, "carol", got.Username)
	assert.Equal(t, "hello there", got.Text)
	assert.Equal(t, "ios-app", got.Device)
	assert.Equal(t, int64(1700000000000), got.Timestamp)
	assert.NotEmpty(t, got.ID)
}
