package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/geoduel/internal/domain/player"
	qb "github.com/riskibarqy/geoduel/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) error {
	query, args, err := qb.InsertModel("players", playerInsertModel{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Rating:      p.Rating,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert player query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("player %s already exists: %w", p.ID, err)
		}
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player: %w", err)
	}
	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	ids := make([]any, 0, len(playerIDs))
	for _, id := range playerIDs {
		ids = append(ids, id)
	}

	query, args, err := qb.Select("*").From("players").
		Where(qb.In("id", ids)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}

func (r *PlayerRepository) UpdateRating(ctx context.Context, playerID string, rating int, updatedAt time.Time) error {
	query, args, err := qb.Update("players").
		Set("rating", rating).
		Set("updated_at", updatedAt).
		Where(qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update rating query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	if ok, err := rowsAffected(result); err != nil || !ok {
		return fmt.Errorf("update rating: player %s not updated: %v", playerID, err)
	}
	return nil
}

func (r *PlayerRepository) RecordResult(ctx context.Context, playerID string, result player.Result, updatedAt time.Time) error {
	column, ok := resultColumns[result]
	if !ok {
		return fmt.Errorf("unknown match result %q", result)
	}

	query, args, err := qb.Update("players").
		SetExpr("games_played", "games_played + 1").
		SetExpr(column, column+" + 1").
		Set("updated_at", updatedAt).
		Where(qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build record result query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

var resultColumns = map[player.Result]string{
	player.ResultWin:  "wins",
	player.ResultLoss: "losses",
	player.ResultDraw: "draws",
}
