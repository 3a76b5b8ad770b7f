package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Marker records that a one-off action happened so it is not repeated.
type Marker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewMarker(client *redis.Client, prefix string, ttl time.Duration) *Marker {
	return &Marker{client: client, prefix: prefix, ttl: ttl}
}

// MarkOnce sets the marker for key and reports whether this call set it.
func (m *Marker) MarkOnce(ctx context.Context, key string) (bool, error) {
	ok, err := m.client.SetNX(ctx, m.prefix+":"+key, time.Now().UTC().Format(time.RFC3339), m.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("set marker %s: %w", key, err)
	}
	return ok, nil
}

// Clear removes the marker so the action may run again.
func (m *Marker) Clear(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, m.prefix+":"+key).Err(); err != nil {
		return fmt.Errorf("clear marker %s: %w", key, err)
	}
	return nil
}
