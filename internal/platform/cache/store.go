package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     any
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}

// Store is a process local keyed cache with per-entry expiry.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	flight  singleflight.Group
	now     func() time.Time
}

// NewStore builds a store whose Set uses ttl as the default expiry. A
// non-positive ttl keeps entries until they are deleted.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key)
}

func (s *Store) getLocked(key string) (any, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

func (s *Store) Set(ctx context.Context, key string, value any) {
	s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *Store) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.setLocked(key, value, ttl)
	s.mu.Unlock()
}

func (s *Store) setLocked(key string, value any, ttl time.Duration) {
	expiresAt := time.Time{}
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = entry{value: value, expiresAt: expiresAt}
}

// SetIfAbsent stores value only when key is missing or expired and reports
// whether it did.
func (s *Store) SetIfAbsent(_ context.Context, key string, value any, ttl time.Duration) bool {
	if key == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.getLocked(key); ok {
		return false
	}
	s.setLocked(key, value, ttl)
	return true
}

// Mutate runs fn against the current value under the store lock and stores
// what it returns. Returning keep=false deletes the key.
func (s *Store) Mutate(_ context.Context, key string, ttl time.Duration, fn func(current any, exists bool) (next any, keep bool)) any {
	if key == "" || fn == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.getLocked(key)
	next, keep := fn(current, exists)
	if !keep {
		delete(s.entries, key)
		return nil
	}
	s.setLocked(key, next, ttl)
	return next
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// CompareAndDelete removes key only while it still holds expected.
func (s *Store) CompareAndDelete(_ context.Context, key string, expected any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.getLocked(key)
	if !ok || current != expected {
		return false
	}
	delete(s.entries, key)
	return true
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}
