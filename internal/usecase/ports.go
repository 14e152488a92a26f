package usecase

import (
	"context"
	"time"
)

// Notifier delivers fire-and-forget events to subscribers of a channel.
type Notifier interface {
	Publish(ctx context.Context, channel, event string, payload any)
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, string, string, any) {}

func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

// Scheduler runs tasks later. Scheduling an existing key replaces the
// pending task.
type Scheduler interface {
	Schedule(key string, delay time.Duration, task func(ctx context.Context)) error
	Cancel(key string)
	Every(name string, interval time.Duration, task func(ctx context.Context)) error
}

// EphemeralStore is a TTL keyed store with atomic list updates and an
// exclusive try-lock.
type EphemeralStore interface {
	List(ctx context.Context, key string) ([]string, error)
	// UpdateList applies fn to the current list as one atomic step and
	// stores the result with ttl. An empty result removes the key.
	UpdateList(ctx context.Context, key string, ttl time.Duration, fn func(current []string) []string) ([]string, error)
	// TryLock acquires key for ttl. acquired is false when someone else
	// holds it; release is nil in that case.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}
