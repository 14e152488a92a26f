package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/geoduel/internal/domain/round"
	qb "github.com/riskibarqy/geoduel/internal/platform/querybuilder"
)

type RoundRepository struct {
	db *sqlx.DB
}

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) Create(ctx context.Context, item round.Round) error {
	query, args, err := qb.InsertModel("rounds", roundInsertFromDomain(item), "")
	if err != nil {
		return fmt.Errorf("build insert round query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("round %d of match %s already exists: %w", item.Number, item.MatchID, err)
		}
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

func (r *RoundRepository) GetByID(ctx context.Context, roundID string) (round.Round, bool, error) {
	return r.getOne(ctx, "get round", qb.Eq("id", roundID))
}

func (r *RoundRepository) GetByMatchAndNumber(ctx context.Context, matchID string, number int) (round.Round, bool, error) {
	return r.getOne(ctx, "get round by number", qb.Eq("match_id", matchID), qb.Eq("round_number", number))
}

func (r *RoundRepository) getOne(ctx context.Context, op string, conditions ...qb.Condition) (round.Round, bool, error) {
	query, args, err := qb.Select("*").From("rounds").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return round.Round{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return roundFromRow(row), true, nil
}

// SaveGuess writes the slot's guess unless the slot is locked or the round
// is finished. When the write is refused the current round is returned with
// false.
func (r *RoundRepository) SaveGuess(ctx context.Context, roundID string, update round.GuessUpdate) (round.Round, bool, error) {
	query, args, err := saveGuessQuery(roundID, update)
	if err != nil {
		return round.Round{}, false, fmt.Errorf("build save guess query: %w", err)
	}

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if !isNotFound(err) {
			return round.Round{}, false, fmt.Errorf("save guess: %w", err)
		}
		current, exists, err := r.GetByID(ctx, roundID)
		if err != nil {
			return round.Round{}, false, err
		}
		if !exists {
			return round.Round{}, false, fmt.Errorf("round %s not found", roundID)
		}
		return current, false, nil
	}
	return roundFromRow(row), true, nil
}

func saveGuessQuery(roundID string, update round.GuessUpdate) (string, []any, error) {
	if update.Slot < 0 || update.Slot > 1 {
		return "", nil, fmt.Errorf("invalid slot %d", update.Slot)
	}
	cols := guessColumnsFor(update.Slot)

	builder := qb.Update("rounds").
		Set(cols.lat, update.Lat).
		Set(cols.lng, update.Lng)
	if update.LockIn {
		builder = builder.Set(cols.lockedAt, update.At)
	}
	return builder.
		Where(
			qb.Eq("id", roundID),
			qb.IsNull("finished_at"),
			qb.IsNull(cols.lockedAt),
		).
		Returning("*").
		ToSQL()
}

func (r *RoundRepository) MarkStarted(ctx context.Context, roundID string, at time.Time) (bool, error) {
	return r.markOnce(ctx, "started_at", roundID, at)
}

func (r *RoundRepository) MarkFinished(ctx context.Context, roundID string, at time.Time) (bool, error) {
	return r.markOnce(ctx, "finished_at", roundID, at)
}

// markOnce sets a timestamp column only while it is still null, so exactly
// one concurrent caller observes true.
func (r *RoundRepository) markOnce(ctx context.Context, column, roundID string, at time.Time) (bool, error) {
	query, args, err := markOnceQuery(column, roundID, at)
	if err != nil {
		return false, fmt.Errorf("build set %s query: %w", column, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("set round %s: %w", column, err)
	}
	return rowsAffected(result)
}

func markOnceQuery(column, roundID string, at time.Time) (string, []any, error) {
	return qb.Update("rounds").
		Set(column, at).
		Where(
			qb.Eq("id", roundID),
			qb.IsNull(column),
		).
		ToSQL()
}

func (r *RoundRepository) SaveScores(ctx context.Context, roundID string, scores [2]*int) error {
	one, two := guessColumnsFor(0), guessColumnsFor(1)
	query, args, err := qb.Update("rounds").
		Set(one.score, intPtrValue(scores[0])).
		Set(two.score, intPtrValue(scores[1])).
		Where(qb.Eq("id", roundID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save scores query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save round scores: %w", err)
	}
	return nil
}
