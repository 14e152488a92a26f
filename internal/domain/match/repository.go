package match

import (
	"context"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/round"
)

// Outcome is the slice of match state a finished round changes.
// SettledRound is the last round already folded into the counters.
type Outcome struct {
	Health        [2]int
	RoundWins     [2]int
	NoGuessRounds int
	CurrentRound  int
	SettledRound  int
}

func (m Match) Outcome() Outcome {
	return Outcome{
		Health:        m.Health,
		RoundWins:     m.RoundWins,
		NoGuessRounds: m.NoGuessRounds,
		CurrentRound:  m.CurrentRound,
		SettledRound:  m.SettledRound,
	}
}

// Repository describes match persistence needs from use cases.
//
// The Mark* operations are conditional transitions: they report whether
// this caller performed the transition, and callers gate side effects on it.
type Repository interface {
	// CreateWithFirstRound stores the match and its first round atomically.
	CreateWithFirstRound(ctx context.Context, m Match, first round.Round) error
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	SaveOutcome(ctx context.Context, matchID string, outcome Outcome, updatedAt time.Time) error
	// MarkInProgress moves a pending match to in_progress.
	MarkInProgress(ctx context.Context, matchID string, at time.Time) (bool, error)
	// MarkCompleted finishes an in_progress match.
	MarkCompleted(ctx context.Context, matchID string, winnerID *string, at time.Time) (bool, error)
	SaveRatingChanges(ctx context.Context, matchID string, changes [2]int) error
}
