package cache

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"
)

// Ephemeral exposes list and lock coordination primitives on top of Store.
// It is the single process counterpart of the redis backed store.
type Ephemeral struct {
	store  *Store
	tokens atomic.Uint64
}

func NewEphemeral(store *Store) *Ephemeral {
	if store == nil {
		store = NewStore(0)
	}
	return &Ephemeral{store: store}
}

func (e *Ephemeral) List(ctx context.Context, key string) ([]string, error) {
	v, ok := e.store.Get(ctx, key)
	if !ok {
		return nil, nil
	}
	items, _ := v.([]string)
	return append([]string(nil), items...), nil
}

// UpdateList applies fn atomically with respect to every other caller of
// UpdateList on the same store. An empty result removes the key.
func (e *Ephemeral) UpdateList(ctx context.Context, key string, ttl time.Duration, fn func(current []string) []string) ([]string, error) {
	var out []string
	e.store.Mutate(ctx, key, ttl, func(current any, _ bool) (any, bool) {
		items, _ := current.([]string)
		next := fn(append([]string(nil), items...))
		out = append([]string(nil), next...)
		return next, len(next) > 0
	})
	return out, nil
}

// TryLock takes key for ttl if nobody holds it. The returned release only
// removes the lock while it is still owned by this caller.
func (e *Ephemeral) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := strconv.FormatUint(e.tokens.Add(1), 10)
	if !e.store.SetIfAbsent(ctx, key, token, ttl) {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		e.store.CompareAndDelete(ctx, key, token)
		return nil
	}
	return release, true, nil
}
