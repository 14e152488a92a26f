package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/geoduel/internal/domain/rating"
	qb "github.com/riskibarqy/geoduel/internal/platform/querybuilder"
)

type ratingHistoryTableModel struct {
	ID             string    `db:"id"`
	PlayerID       string    `db:"player_id"`
	MatchID        string    `db:"match_id"`
	RatingBefore   int       `db:"rating_before"`
	RatingAfter    int       `db:"rating_after"`
	Delta          int       `db:"delta"`
	OpponentRating int       `db:"opponent_rating"`
	CreatedAt      time.Time `db:"created_at"`
}

type RatingHistoryRepository struct {
	db *sqlx.DB
}

func NewRatingHistoryRepository(db *sqlx.DB) *RatingHistoryRepository {
	return &RatingHistoryRepository{db: db}
}

// Append inserts all entries in one transaction. A replayed match hits the
// (player_id, match_id) constraint and is skipped.
func (r *RatingHistoryRepository) Append(ctx context.Context, entries ...rating.History) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rating history tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, entry := range entries {
		query, args, err := qb.InsertModel("elo_history", ratingHistoryTableModel{
			ID:             entry.ID,
			PlayerID:       entry.PlayerID,
			MatchID:        entry.MatchID,
			RatingBefore:   entry.RatingBefore,
			RatingAfter:    entry.RatingAfter,
			Delta:          entry.Delta,
			OpponentRating: entry.OpponentRating,
			CreatedAt:      entry.CreatedAt,
		}, "ON CONFLICT (player_id, match_id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert rating history query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert rating history for player=%s match=%s: %w", entry.PlayerID, entry.MatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rating history tx: %w", err)
	}
	return nil
}

func (r *RatingHistoryRepository) ListByPlayer(ctx context.Context, playerID string, limit int) ([]rating.History, error) {
	builder := qb.Select("*").From("elo_history").
		Where(qb.Eq("player_id", playerID)).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rating history query: %w", err)
	}

	var rows []ratingHistoryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rating history: %w", err)
	}

	out := make([]rating.History, 0, len(rows))
	for _, row := range rows {
		out = append(out, rating.History{
			ID:             row.ID,
			PlayerID:       row.PlayerID,
			MatchID:        row.MatchID,
			RatingBefore:   row.RatingBefore,
			RatingAfter:    row.RatingAfter,
			Delta:          row.Delta,
			OpponentRating: row.OpponentRating,
			CreatedAt:      row.CreatedAt,
		})
	}
	return out, nil
}
