package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/geoduel/internal/domain/rating"
)

type RatingHistoryRepository struct {
	mu       sync.RWMutex
	byPlayer map[string][]rating.History
}

func NewRatingHistoryRepository() *RatingHistoryRepository {
	return &RatingHistoryRepository{byPlayer: make(map[string][]rating.History)}
}

func (r *RatingHistoryRepository) Append(_ context.Context, entries ...rating.History) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range entries {
		r.byPlayer[entry.PlayerID] = append(r.byPlayer[entry.PlayerID], entry)
	}
	return nil
}

// ListByPlayer returns the newest entries first.
func (r *RatingHistoryRepository) ListByPlayer(_ context.Context, playerID string, limit int) ([]rating.History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byPlayer[playerID]
	out := make([]rating.History, 0, min(len(items), max(limit, 0)))
	for i := len(items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, items[i])
	}
	return out, nil
}
