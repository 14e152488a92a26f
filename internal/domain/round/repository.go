package round

import (
	"context"
	"time"
)

// GuessUpdate is a single player's submission.
type GuessUpdate struct {
	Slot   int
	Lat    float64
	Lng    float64
	LockIn bool
	At     time.Time
}

// Repository describes round persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, r Round) error
	GetByID(ctx context.Context, roundID string) (Round, bool, error)
	GetByMatchAndNumber(ctx context.Context, matchID string, number int) (Round, bool, error)
	// SaveGuess writes the guess only while the slot is not locked and the
	// round is not finished. It returns the stored round and whether the
	// write happened.
	SaveGuess(ctx context.Context, roundID string, update GuessUpdate) (Round, bool, error)
	// MarkStarted sets started_at if it is still null.
	MarkStarted(ctx context.Context, roundID string, at time.Time) (bool, error)
	// MarkFinished sets finished_at if it is still null.
	MarkFinished(ctx context.Context, roundID string, at time.Time) (bool, error)
	SaveScores(ctx context.Context, roundID string, scores [2]*int) error
}
