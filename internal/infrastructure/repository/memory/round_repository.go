package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/round"
)

type RoundRepository struct {
	mu       sync.Mutex
	items    map[string]round.Round
	byNumber map[string]string
}

func NewRoundRepository() *RoundRepository {
	return &RoundRepository{
		items:    make(map[string]round.Round),
		byNumber: make(map[string]string),
	}
}

func roundNumberKey(matchID string, number int) string {
	return fmt.Sprintf("%s::%d", matchID, number)
}

func (r *RoundRepository) Create(_ context.Context, item round.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insertLocked(item)
}

func (r *RoundRepository) insertLocked(item round.Round) error {
	if _, ok := r.items[item.ID]; ok {
		return fmt.Errorf("round %s already exists", item.ID)
	}
	key := roundNumberKey(item.MatchID, item.Number)
	if _, ok := r.byNumber[key]; ok {
		return fmt.Errorf("round %d of match %s already exists", item.Number, item.MatchID)
	}
	r.items[item.ID] = cloneRound(item)
	r.byNumber[key] = item.ID
	return nil
}

func (r *RoundRepository) GetByID(_ context.Context, roundID string) (round.Round, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[roundID]
	if !ok {
		return round.Round{}, false, nil
	}
	return cloneRound(item), true, nil
}

func (r *RoundRepository) GetByMatchAndNumber(_ context.Context, matchID string, number int) (round.Round, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roundID, ok := r.byNumber[roundNumberKey(matchID, number)]
	if !ok {
		return round.Round{}, false, nil
	}
	return cloneRound(r.items[roundID]), true, nil
}

func (r *RoundRepository) SaveGuess(_ context.Context, roundID string, update round.GuessUpdate) (round.Round, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[roundID]
	if !ok {
		return round.Round{}, false, fmt.Errorf("round %s not found", roundID)
	}
	if update.Slot < 0 || update.Slot > 1 {
		return round.Round{}, false, fmt.Errorf("invalid slot %d", update.Slot)
	}
	if item.IsFinished() || item.Guesses[update.Slot].Locked() {
		return cloneRound(item), false, nil
	}

	lat, lng := update.Lat, update.Lng
	guess := round.Guess{Lat: &lat, Lng: &lng}
	if update.LockIn {
		at := update.At
		guess.LockedAt = &at
	}
	item.Guesses[update.Slot] = guess
	r.items[roundID] = item
	return cloneRound(item), true, nil
}

func (r *RoundRepository) MarkStarted(_ context.Context, roundID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[roundID]
	if !ok || item.StartedAt != nil {
		return false, nil
	}
	item.StartedAt = &at
	r.items[roundID] = item
	return true, nil
}

func (r *RoundRepository) MarkFinished(_ context.Context, roundID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[roundID]
	if !ok || item.FinishedAt != nil {
		return false, nil
	}
	item.FinishedAt = &at
	r.items[roundID] = item
	return true, nil
}

func (r *RoundRepository) SaveScores(_ context.Context, roundID string, scores [2]*int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[roundID]
	if !ok {
		return fmt.Errorf("round %s not found", roundID)
	}
	for slot, score := range scores {
		item.Scores[slot] = cloneInt(score)
	}
	r.items[roundID] = item
	return nil
}

func cloneRound(item round.Round) round.Round {
	copied := item
	for slot, guess := range item.Guesses {
		copied.Guesses[slot] = round.Guess{
			Lat:      cloneFloat(guess.Lat),
			Lng:      cloneFloat(guess.Lng),
			LockedAt: cloneTime(guess.LockedAt),
		}
		copied.Scores[slot] = cloneInt(item.Scores[slot])
	}
	copied.StartedAt = cloneTime(item.StartedAt)
	copied.FinishedAt = cloneTime(item.FinishedAt)
	return copied
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
