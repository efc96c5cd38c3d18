package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/133matt/ChatServer/internal/models"
)

const (
	// Sorted set of JSON-encoded messages scored by unix-ms timestamp.
	messagesKey = "messages"
	// Hash from message ID to the exact sorted-set member, so delete-by-id
	// can ZREM without scanning.
	messagesByIDKey = "messages:byid"
)

// RedisStore persists messages in a Redis sorted set scored by timestamp.
// The score doubles as the ordering key for the list contract.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects a Redis-backed message store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() {
	s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Append stores the message in the sorted set and the by-ID hash.
func (s *RedisStore) Append(ctx context.Context, msg *models.Message) (*models.Message, error) {
	stored := *msg
	if stored.ID == "" {
		stored.ID = NewID()
	}

	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, messagesKey, redis.Z{
		Score:  float64(stored.Timestamp),
		Member: string(data),
	})
	pipe.HSet(ctx, messagesByIDKey, stored.ID, string(data))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, unavailable(err)
	}

	return &stored, nil
}

// List returns the most recent limit messages, oldest first.
func (s *RedisStore) List(ctx context.Context, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	members, err := s.client.ZRevRange(ctx, messagesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, unavailable(err)
	}

	var messages []models.Message
	for _, member := range members {
		var msg models.Message
		if err := json.Unmarshal([]byte(member), &msg); err != nil {
			continue // skip corrupt members rather than failing the list
		}
		messages = append(messages, msg)
	}

	reverse(messages)
	return messages, nil
}

// Delete removes one message by ID.
func (s *RedisStore) Delete(ctx context.Context, id string) (bool, error) {
	member, err := s.client.HGet(ctx, messagesByIDKey, id).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, unavailable(err)
	}

	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, messagesKey, member)
	pipe.HDel(ctx, messagesByIDKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, unavailable(err)
	}
	return true, nil
}

// DeleteAll removes every message.
func (s *RedisStore) DeleteAll(ctx context.Context) (int64, error) {
	count, err := s.client.ZCard(ctx, messagesKey).Result()
	if err != nil {
		return 0, unavailable(err)
	}

	if err := s.client.Del(ctx, messagesKey, messagesByIDKey).Err(); err != nil {
		return 0, unavailable(err)
	}
	return count, nil
}

// PurgeBefore removes messages older than cutoff.
func (s *RedisStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	maxScore := cutoff.UnixMilli() - 1

	// Collect IDs first so the by-ID hash stays consistent with the set.
	members, err := s.client.ZRangeByScore(ctx, messagesKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: formatScore(maxScore),
	}).Result()
	if err != nil {
		return 0, unavailable(err)
	}
	if len(members) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(members))
	for _, member := range members {
		var msg models.Message
		if err := json.Unmarshal([]byte(member), &msg); err == nil {
			ids = append(ids, msg.ID)
		}
	}

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, messagesKey, "-inf", formatScore(maxScore))
	if len(ids) > 0 {
		pipe.HDel(ctx, messagesByIDKey, ids...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, unavailable(err)
	}

	return int64(len(members)), nil
}

func formatScore(ms int64) string {
	return strconv.FormatInt(ms, 10)
}
