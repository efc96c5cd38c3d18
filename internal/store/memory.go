package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/133matt/ChatServer/internal/models"
)

// MemoryStore keeps messages in a guarded in-process slice. Default backend
// for development and tests; nothing survives a restart.
type MemoryStore struct {
	mu       sync.Mutex
	messages []models.Message
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() {}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Append stores a copy of the message, assigning an ID if needed.
func (s *MemoryStore) Append(ctx context.Context, msg *models.Message) (*models.Message, error) {
	stored := *msg
	if stored.ID == "" {
		stored.ID = NewID()
	}

	s.mu.Lock()
	s.messages = append(s.messages, stored)
	s.mu.Unlock()

	return &stored, nil
}

// List returns the most recent limit messages, oldest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.Lock()
	all := make([]models.Message, len(s.messages))
	copy(all, s.messages)
	s.mu.Unlock()

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Timestamp != all[j].Timestamp {
			return all[i].Timestamp < all[j].Timestamp
		}
		return all[i].ID < all[j].ID
	})

	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

// Delete removes one message by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, msg := range s.messages {
		if msg.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// DeleteAll removes every message.
func (s *MemoryStore) DeleteAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := int64(len(s.messages))
	s.messages = nil
	return count, nil
}

// PurgeBefore removes messages with a timestamp older than cutoff.
func (s *MemoryStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.messages[:0]
	var removed int64
	for _, msg := range s.messages {
		if msg.Timestamp < cutoffMs {
			removed++
			continue
		}
		kept = append(kept, msg)
	}
	s.messages = kept
	return removed, nil
}
