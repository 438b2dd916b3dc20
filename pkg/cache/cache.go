// Package cache provides the TTL key/value store backing pool-graph and
// route caching. Freshness is decided by the timestamp embedded in each
// entry, compared against a caller-supplied max age at read time; the
// store's native expiry is only a safety net.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by Get when a key is absent. Expired entries are
// reported identically by Open; callers cannot distinguish the two.
var ErrMiss = errors.New("cache miss")

// Store is the key/value contract shared by the Redis and in-memory
// implementations. Writes are last-write-wins; the store is never used for
// mutual exclusion.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	ExpireBefore(ctx context.Context, cutoff time.Time) error
}

// Envelope wraps a cached payload with its creation time so read-side max
// age can vary per call.
type Envelope struct {
	CreatedAt time.Time       `json:"createdAt"`
	Payload   json.RawMessage `json:"payload"`
}

// Seal marshals v into an envelope stamped with the current time.
func Seal(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	data, err := json.Marshal(Envelope{CreatedAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return data, nil
}

// Open unmarshals an envelope into v if it is younger than maxAge. An entry
// whose age is >= maxAge is reported as ErrMiss, exactly like an absent key.
func Open(data []byte, maxAge time.Duration, v any) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if time.Since(env.CreatedAt) >= maxAge {
		return ErrMiss
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}

// CreatedAt extracts the embedded creation time without decoding the
// payload. Used by ExpireBefore implementations.
func CreatedAt(data []byte) (time.Time, error) {
	var env struct {
		CreatedAt time.Time `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return time.Time{}, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	return env.CreatedAt, nil
}
