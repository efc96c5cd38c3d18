package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/133matt/ChatServer/internal/models"
)

// ErrUnavailable indicates a backend connectivity or query failure.
// Callers distinguish it from validation and not-found conditions.
var ErrUnavailable = errors.New("store unavailable")

// MessageStore is the backend-agnostic contract for the durable message
// collection. All adapters implement it; the service never talks to a
// backend driver directly.
type MessageStore interface {
	// Append durably stores the message, assigning a ULID if the ID is
	// empty, and returns the stored record. Never partially applied.
	Append(ctx context.Context, msg *models.Message) (*models.Message, error)

	// List returns the most recent limit messages in ascending timestamp
	// order (oldest first). A non-positive limit falls back to the
	// adapter default.
	List(ctx context.Context, limit int) ([]models.Message, error)

	// Delete removes one message by ID. Returns false, not an error,
	// when the ID is absent.
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteAll removes every message and returns the count removed.
	DeleteAll(ctx context.Context) (int64, error)

	// PurgeBefore removes messages older than cutoff and returns the
	// count removed. On-demand maintenance, never scheduled.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Ping(ctx context.Context) error
	Close()
}

// DefaultListLimit applies when an adapter receives a non-positive limit.
const DefaultListLimit = 50

// NewID returns a fresh message identifier. ULIDs sort by creation time,
// which keeps same-timestamp messages in insertion order.
func NewID() string {
	return ulid.Make().String()
}

// unavailable wraps a backend error so callers can match ErrUnavailable.
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
