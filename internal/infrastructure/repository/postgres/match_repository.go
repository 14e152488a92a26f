package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/geoduel/internal/domain/match"
	"github.com/riskibarqy/geoduel/internal/domain/round"
	qb "github.com/riskibarqy/geoduel/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) CreateWithFirstRound(ctx context.Context, m match.Match, first round.Round) error {
	matchQuery, matchArgs, err := qb.InsertModel("matches", matchInsertFromDomain(m), "")
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}
	roundQuery, roundArgs, err := qb.InsertModel("rounds", roundInsertFromDomain(first), "")
	if err != nil {
		return fmt.Errorf("build insert round query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create match tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, matchQuery, matchArgs...); err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	if _, err := tx.ExecContext(ctx, roundQuery, roundArgs...); err != nil {
		return fmt.Errorf("insert first round: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create match tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}
	return matchFromRow(row), true, nil
}

func (r *MatchRepository) SaveOutcome(ctx context.Context, matchID string, outcome match.Outcome, updatedAt time.Time) error {
	query, args, err := qb.Update("matches").
		Set("player_one_health", outcome.Health[match.SlotOne]).
		Set("player_two_health", outcome.Health[match.SlotTwo]).
		Set("player_one_round_wins", outcome.RoundWins[match.SlotOne]).
		Set("player_two_round_wins", outcome.RoundWins[match.SlotTwo]).
		Set("no_guess_rounds", outcome.NoGuessRounds).
		Set("current_round", outcome.CurrentRound).
		Set("settled_round", outcome.SettledRound).
		Set("updated_at", updatedAt).
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save match outcome query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save match outcome: %w", err)
	}
	return nil
}

// MarkInProgress only moves a pending match; false means another caller did.
func (r *MatchRepository) MarkInProgress(ctx context.Context, matchID string, at time.Time) (bool, error) {
	query, args, err := markInProgressQuery(matchID, at)
	if err != nil {
		return false, fmt.Errorf("build mark match in progress query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark match in progress: %w", err)
	}
	return rowsAffected(result)
}

func (r *MatchRepository) MarkCompleted(ctx context.Context, matchID string, winnerID *string, at time.Time) (bool, error) {
	query, args, err := markCompletedQuery(matchID, winnerID, at)
	if err != nil {
		return false, fmt.Errorf("build mark match completed query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark match completed: %w", err)
	}
	return rowsAffected(result)
}

func markInProgressQuery(matchID string, at time.Time) (string, []any, error) {
	return qb.Update("matches").
		Set("status", string(match.StatusInProgress)).
		Set("updated_at", at).
		Where(
			qb.Eq("id", matchID),
			qb.Eq("status", string(match.StatusPending)),
		).
		ToSQL()
}

// markCompletedQuery only matches an in_progress row, so one caller wins
// the completion.
func markCompletedQuery(matchID string, winnerID *string, at time.Time) (string, []any, error) {
	var winner any
	if winnerID != nil {
		winner = *winnerID
	}
	return qb.Update("matches").
		Set("status", string(match.StatusCompleted)).
		Set("winner_id", winner).
		Set("completed_at", at).
		Set("updated_at", at).
		Where(
			qb.Eq("id", matchID),
			qb.Eq("status", string(match.StatusInProgress)),
		).
		ToSQL()
}

func (r *MatchRepository) SaveRatingChanges(ctx context.Context, matchID string, changes [2]int) error {
	query, args, err := qb.Update("matches").
		Set("player_one_rating_change", changes[match.SlotOne]).
		Set("player_two_rating_change", changes[match.SlotTwo]).
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save rating changes query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save rating changes: %w", err)
	}
	return nil
}
