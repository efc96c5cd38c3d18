// Package ingest implements the message ingestion pipeline: the inbound
// payload is validated, sanitized, defaulted, and handed to the record
// store. Exactly one durable write on success, none on failure.
package ingest

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/133matt/ChatServer/internal/config"
	"github.com/133matt/ChatServer/internal/models"
	"github.com/133matt/ChatServer/internal/store"
)

// Payload is the inbound message shape. Timestamp stays raw JSON so the
// pipeline can accept either epoch milliseconds or an RFC3339 string and
// classify garbage as InvalidTimestamp.
type Payload struct {
	Username    string          `json:"username"`
	Text        string          `json:"text"`
	Media       string          `json:"media"`
	MediaKind   string          `json:"mediaKind"`
	Device      string          `json:"device"`
	SourceURL   string          `json:"sourceUrl"`
	SourceTitle string          `json:"sourceTitle"`
	Timestamp   json.RawMessage `json:"timestamp"`
}

// Pipeline validates and normalizes payloads and appends them to a store.
type Pipeline struct {
	store  store.MessageStore
	limits config.Limits
	now    func() time.Time
}

// New creates a pipeline writing to the given store.
func New(st store.MessageStore, limits config.Limits) *Pipeline {
	return &Pipeline{store: st, limits: limits, now: time.Now}
}

// Ingest runs the validation steps in order, short-circuiting on the first
// failure, then appends the normalized record. Validation failures are
// *ValidationError values; store failures wrap store.ErrUnavailable.
func (p *Pipeline) Ingest(ctx context.Context, payload Payload) (*models.Message, error) {
	username := strings.TrimSpace(payload.Username)
	if username == "" {
		return nil, missingField("username")
	}

	text := strings.TrimSpace(payload.Text)
	sourceURL := strings.TrimSpace(payload.SourceURL)
	if text == "" && payload.Media == "" && sourceURL == "" {
		return nil, emptyMessage()
	}

	// Oversized text is truncated, never rejected.
	username = truncate(username, p.limits.MaxUsernameLen)
	text = truncate(text, p.limits.MaxTextLen)
	device := truncate(strings.TrimSpace(payload.Device), p.limits.MaxDeviceLen)

	media, mediaKind, verr := resolveMedia(payload.Media, payload.MediaKind, p.limits.MaxInlineMediaBytes)
	if verr != nil {
		return nil, verr
	}

	ts, verr := p.parseTimestamp(payload.Timestamp)
	if verr != nil {
		return nil, verr
	}

	msg := &models.Message{
		Username:    username,
		Text:        text,
		Media:       media,
		MediaKind:   mediaKind,
		Device:      device,
		SourceURL:   sourceURL,
		SourceTitle: strings.TrimSpace(payload.SourceTitle),
		Timestamp:   ts,
	}

	return p.store.Append(ctx, msg)
}

// parseTimestamp accepts an integer epoch-millisecond value or an RFC3339
// string; absent defaults to server now.
func (p *Pipeline) parseTimestamp(raw json.RawMessage) (int64, *ValidationError) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return p.now().UnixMilli(), nil
	}

	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		if n < 0 {
			return 0, invalidTimestamp(trimmed)
		}
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UnixMilli(), nil
		}
		return 0, invalidTimestamp(s)
	}

	return 0, invalidTimestamp(trimmed)
}

// truncate caps a string at n characters (runes, not bytes).
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
