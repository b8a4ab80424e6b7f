package cache

import (
	"context"
	"encoding/json"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ReadThrough returns the cached JSON value for key, or calls load and stores
// its result. Cache errors never fail the call; c may be nil.
func ReadThrough[T any](ctx context.Context, c BytesCache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, bool, error) {
	if c != nil && ttl > 0 {
		if b, ok, err := c.GetBytes(ctx, key); err == nil && ok {
			var v T
			if json.Unmarshal(b, &v) == nil {
				return v, true, nil
			}
		}
	}

	v, err := load(ctx)
	if err != nil {
		return v, false, err
	}
	if c != nil && ttl > 0 {
		if b, err := json.Marshal(v); err == nil {
			_ = c.SetBytes(ctx, key, b, ttl)
		}
	}
	return v, false, nil
}
