package cache

import (
	"context"
	"time"
)

// Query is a cache-aside read. A nil cache always fetches.
func Query[T any](ctx context.Context, c Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var v T
	if c != nil {
		if err := c.Get(ctx, key, &v); err == nil {
			return v, nil
		}
	}
	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	if c != nil {
		_ = c.Set(ctx, key, v, ttl)
	}
	return v, nil
}

// Optimistic applies a local change before the server confirms it.
//
// It snapshots the cached value (fetching it when absent), stores apply(snapshot),
// then runs mutate. If mutate fails the snapshot is put back and the error is
// returned together with the snapshot. On success the entry is invalidated so
// the next read reflects the server. apply must not modify its argument.
func Optimistic[T any](
	ctx context.Context,
	c Cache,
	key string,
	ttl time.Duration,
	fetch func(context.Context) (T, error),
	apply func(T) T,
	mutate func(context.Context) error,
) (T, error) {
	snapshot, err := Query(ctx, c, key, ttl, fetch)
	if err != nil {
		return snapshot, err
	}

	next := apply(snapshot)
	if c != nil {
		_ = c.Set(ctx, key, next, ttl)
	}

	if err := mutate(ctx); err != nil {
		if c != nil {
			_ = c.Set(ctx, key, snapshot, ttl)
		}
		return snapshot, err
	}

	if c != nil {
		_ = c.Delete(ctx, key)
	}
	return next, nil
}
