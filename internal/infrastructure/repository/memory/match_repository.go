package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/match"
	"github.com/riskibarqy/geoduel/internal/domain/round"
)

// MatchRepository shares its round store so a match and its first round
// are inserted under both locks.
type MatchRepository struct {
	mu     sync.Mutex
	items  map[string]match.Match
	rounds *RoundRepository
}

func NewMatchRepository(rounds *RoundRepository) *MatchRepository {
	if rounds == nil {
		rounds = NewRoundRepository()
	}
	return &MatchRepository{
		items:  make(map[string]match.Match),
		rounds: rounds,
	}
}

func (r *MatchRepository) CreateWithFirstRound(_ context.Context, m match.Match, first round.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[m.ID]; ok {
		return fmt.Errorf("match %s already exists", m.ID)
	}

	r.rounds.mu.Lock()
	defer r.rounds.mu.Unlock()
	if err := r.rounds.insertLocked(first); err != nil {
		return err
	}
	r.items[m.ID] = cloneMatch(m)
	return nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(item), true, nil
}

func (r *MatchRepository) SaveOutcome(_ context.Context, matchID string, outcome match.Outcome, updatedAt time.Time) error {
	return r.update(matchID, func(item *match.Match) bool {
		item.Health = outcome.Health
		item.RoundWins = outcome.RoundWins
		item.NoGuessRounds = outcome.NoGuessRounds
		item.CurrentRound = outcome.CurrentRound
		item.SettledRound = outcome.SettledRound
		item.UpdatedAt = updatedAt
		return true
	})
}

func (r *MatchRepository) MarkInProgress(_ context.Context, matchID string, at time.Time) (bool, error) {
	var changed bool
	err := r.update(matchID, func(item *match.Match) bool {
		if item.Status != match.StatusPending {
			return false
		}
		item.Status = match.StatusInProgress
		item.UpdatedAt = at
		changed = true
		return true
	})
	return changed, err
}

func (r *MatchRepository) MarkCompleted(_ context.Context, matchID string, winnerID *string, at time.Time) (bool, error) {
	var changed bool
	err := r.update(matchID, func(item *match.Match) bool {
		if item.Status != match.StatusInProgress {
			return false
		}
		item.Status = match.StatusCompleted
		item.WinnerID = cloneString(winnerID)
		item.CompletedAt = &at
		item.UpdatedAt = at
		changed = true
		return true
	})
	return changed, err
}

func (r *MatchRepository) SaveRatingChanges(_ context.Context, matchID string, changes [2]int) error {
	return r.update(matchID, func(item *match.Match) bool {
		for slot, delta := range changes {
			item.RatingChange[slot] = &delta
		}
		return true
	})
}

func (r *MatchRepository) update(matchID string, fn func(item *match.Match) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[matchID]
	if !ok {
		return fmt.Errorf("match %s not found", matchID)
	}
	if fn(&item) {
		r.items[matchID] = item
	}
	return nil
}

func cloneMatch(item match.Match) match.Match {
	copied := item
	copied.WinnerID = cloneString(item.WinnerID)
	copied.CompletedAt = cloneTime(item.CompletedAt)
	for slot := range item.RatingChange {
		copied.RatingChange[slot] = cloneInt(item.RatingChange[slot])
	}
	return copied
}
