// Package kvstore persists per-user state snapshots (cart, wishlist, checkout
// session) as JSON values in Redis. Snapshots are read once when a request
// needs them and written back after every mutating action; a missing or
// unparsable value falls back to the empty state so a corrupted snapshot never
// breaks the user.
package kvstore

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// NewClient connects to Redis using a redis:// URL and verifies the
// connection with a ping.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis URL")
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}
	return rdb, nil
}

// Store is a typed JSON snapshot store for a single state kind, keyed by
// user id under a fixed key prefix.
type Store[T any] struct {
	rdb    *redis.Client
	prefix string
	empty  func() T
}

// NewStore creates a Store writing values under "<prefix>:<userID>". The
// empty constructor supplies the fallback state for missing or malformed
// snapshots.
func NewStore[T any](rdb *redis.Client, prefix string, empty func() T) *Store[T] {
	return &Store[T]{rdb: rdb, prefix: prefix, empty: empty}
}

func (s *Store[T]) key(userID string) string {
	return s.prefix + ":" + userID
}

// Load reads and decodes the user's snapshot. A missing key or a snapshot
// that fails to parse yields the empty state; only transport failures are
// returned as errors.
func (s *Store[T]) Load(ctx context.Context, userID string) (T, error) {
	raw, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return s.empty(), nil
		}
		return s.empty(), errors.Wrapf(err, "load %s", s.key(userID))
	}
	return decode(raw, s.empty), nil
}

// Save serializes the snapshot and overwrites the stored value.
func (s *Store[T]) Save(ctx context.Context, userID string, state T) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return errors.Wrapf(err, "encode %s", s.key(userID))
	}
	if err := s.rdb.Set(ctx, s.key(userID), raw, 0).Err(); err != nil {
		return errors.Wrapf(err, "save %s", s.key(userID))
	}
	return nil
}

// Delete removes the user's snapshot.
func (s *Store[T]) Delete(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, s.key(userID)).Err(); err != nil {
		return errors.Wrapf(err, "delete %s", s.key(userID))
	}
	return nil
}

// decode unmarshals a stored snapshot, substituting the empty state when the
// stored bytes are not valid JSON for T.
func decode[T any](raw []byte, empty func() T) T {
	var state T
	if err := json.Unmarshal(raw, &state); err != nil {
		return empty()
	}
	return state
}
