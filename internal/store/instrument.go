package store

import (
	"context"
	"time"

	"github.com/133matt/ChatServer/internal/metrics"
	"github.com/133matt/ChatServer/internal/models"
)

// instrumentedStore wraps a MessageStore and records per-operation latency.
type instrumentedStore struct {
	inner MessageStore
}

// WithMetrics decorates a store with Prometheus latency observation.
func WithMetrics(inner MessageStore) MessageStore {
	return &instrumentedStore{inner: inner}
}

func observe(op string, start time.Time) {
	metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *instrumentedStore) Append(ctx context.Context, msg *models.Message) (*models.Message, error) {
	defer observe("append", time.Now())
	return s.inner.Append(ctx, msg)
}

func (s *instrumentedStore) List(ctx context.Context, limit int) ([]models.Message, error) {
	defer observe("list", time.Now())
	return s.inner.List(ctx, limit)
}

func (s *instrumentedStore) Delete(ctx context.Context, id string) (bool, error) {
	defer observe("delete", time.Now())
	return s.inner.Delete(ctx, id)
}

func (s *instrumentedStore) DeleteAll(ctx context.Context) (int64, error) {
	defer observe("delete_all", time.Now())
	return s.inner.DeleteAll(ctx)
}

func (s *instrumentedStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	defer observe("purge", time.Now())
	return s.inner.PurgeBefore(ctx, cutoff)
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

func (s *instrumentedStore) Close() {
	s.inner.Close()
}
