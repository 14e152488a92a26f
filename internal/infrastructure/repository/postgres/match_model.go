package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/match"
)

type matchTableModel struct {
	ID                    string         `db:"id"`
	PlayerOneID           string         `db:"player_one_id"`
	PlayerTwoID           string         `db:"player_two_id"`
	MapID                 string         `db:"map_id"`
	Format                string         `db:"format"`
	Seed                  int            `db:"seed"`
	MaxRounds             int            `db:"max_rounds"`
	MaxHealth             int            `db:"max_health"`
	PlayerOneHealth       int            `db:"player_one_health"`
	PlayerTwoHealth       int            `db:"player_two_health"`
	PlayerOneRoundWins    int            `db:"player_one_round_wins"`
	PlayerTwoRoundWins    int            `db:"player_two_round_wins"`
	WinnerID              sql.NullString `db:"winner_id"`
	Status                string         `db:"status"`
	NoGuessRounds         int            `db:"no_guess_rounds"`
	CurrentRound          int            `db:"current_round"`
	SettledRound          int            `db:"settled_round"`
	PlayerOneRatingChange sql.NullInt64  `db:"player_one_rating_change"`
	PlayerTwoRatingChange sql.NullInt64  `db:"player_two_rating_change"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
	CompletedAt           sql.NullTime   `db:"completed_at"`
}

type matchInsertModel struct {
	ID                 string    `db:"id"`
	PlayerOneID        string    `db:"player_one_id"`
	PlayerTwoID        string    `db:"player_two_id"`
	MapID              string    `db:"map_id"`
	Format             string    `db:"format"`
	Seed               int       `db:"seed"`
	MaxRounds          int       `db:"max_rounds"`
	MaxHealth          int       `db:"max_health"`
	PlayerOneHealth    int       `db:"player_one_health"`
	PlayerTwoHealth    int       `db:"player_two_health"`
	PlayerOneRoundWins int       `db:"player_one_round_wins"`
	PlayerTwoRoundWins int       `db:"player_two_round_wins"`
	Status             string    `db:"status"`
	NoGuessRounds      int       `db:"no_guess_rounds"`
	CurrentRound       int       `db:"current_round"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func matchInsertFromDomain(m match.Match) matchInsertModel {
	return matchInsertModel{
		ID:                 m.ID,
		PlayerOneID:        m.PlayerOneID,
		PlayerTwoID:        m.PlayerTwoID,
		MapID:              m.MapID,
		Format:             string(m.Format),
		Seed:               m.Seed,
		MaxRounds:          m.MaxRounds,
		MaxHealth:          m.MaxHealth,
		PlayerOneHealth:    m.Health[match.SlotOne],
		PlayerTwoHealth:    m.Health[match.SlotTwo],
		PlayerOneRoundWins: m.RoundWins[match.SlotOne],
		PlayerTwoRoundWins: m.RoundWins[match.SlotTwo],
		Status:             string(m.Status),
		NoGuessRounds:      m.NoGuessRounds,
		CurrentRound:       m.CurrentRound,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:            row.ID,
		PlayerOneID:   row.PlayerOneID,
		PlayerTwoID:   row.PlayerTwoID,
		MapID:         row.MapID,
		Format:        match.Format(row.Format),
		Seed:          row.Seed,
		MaxRounds:     row.MaxRounds,
		MaxHealth:     row.MaxHealth,
		Health:        [2]int{row.PlayerOneHealth, row.PlayerTwoHealth},
		RoundWins:     [2]int{row.PlayerOneRoundWins, row.PlayerTwoRoundWins},
		WinnerID:      nullStringPtr(row.WinnerID),
		Status:        match.Status(row.Status),
		NoGuessRounds: row.NoGuessRounds,
		CurrentRound:  row.CurrentRound,
		SettledRound:  row.SettledRound,
		RatingChange:  [2]*int{nullIntPtr(row.PlayerOneRatingChange), nullIntPtr(row.PlayerTwoRatingChange)},
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		CompletedAt:   nullTimePtr(row.CompletedAt),
	}
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	out := v.String
	return &out
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	out := v.Float64
	return &out
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	out := v.Time
	return &out
}

func intPtrValue(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
