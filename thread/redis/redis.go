// Package redis provides a Redis-backed core.ThreadStore. Each thread lives
// in a Redis list keyed by subscription id; RPUSH gives atomic, append-only
// message persistence matching the thread contract.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/predictmesh/core"
	"github.com/hupe1980/predictmesh/logging"
	"github.com/redis/go-redis/v9"
)

// Options configure the store.
type Options struct {
	// KeyPrefix namespaces thread keys, e.g. "predictmesh:thread:".
	KeyPrefix string
	Logger    logging.Logger
}

// Store implements core.ThreadStore on a Redis client. The client's lifecycle
// belongs to the caller.
type Store struct {
	client *redis.Client
	prefix string
	logger logging.Logger
}

// NewStore creates a Store over an established Redis client.
func NewStore(client *redis.Client, optFns ...func(o *Options)) *Store {
	opts := Options{KeyPrefix: "predictmesh:thread:", Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{client: client, prefix: opts.KeyPrefix, logger: opts.Logger}
}

func (s *Store) key(subscriptionID string) string { return s.prefix + subscriptionID }

// FindOrCreate implements core.ThreadStore. An empty list and a missing key
// are indistinguishable in Redis, which makes the upsert implicit: a thread
// exists as soon as its first message is appended.
func (s *Store) FindOrCreate(ctx context.Context, subscriptionID string) (*core.Thread, error) {
	entries, err := s.client.LRange(ctx, s.key(subscriptionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load thread %s: %w", subscriptionID, err)
	}

	th := core.NewThread(subscriptionID)
	for _, entry := range entries {
		var msg core.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			s.logger.Warn("skipping undecodable thread message subscription_id=%s error=%v", subscriptionID, err)
			continue
		}
		th.Append(msg)
	}
	return th, nil
}

// Append implements core.ThreadStore.
func (s *Store) Append(ctx context.Context, subscriptionID string, msg core.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode thread message: %w", err)
	}
	if err := s.client.RPush(ctx, s.key(subscriptionID), data).Err(); err != nil {
		return fmt.Errorf("failed to append thread message: %w", err)
	}
	return nil
}
