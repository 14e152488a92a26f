package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/round"
)

type roundTableModel struct {
	ID                string          `db:"id"`
	MatchID           string          `db:"match_id"`
	RoundNumber       int             `db:"round_number"`
	TargetLat         float64         `db:"target_lat"`
	TargetLng         float64         `db:"target_lng"`
	TargetHeading     float64         `db:"target_heading"`
	PlayerOneLat      sql.NullFloat64 `db:"player_one_lat"`
	PlayerOneLng      sql.NullFloat64 `db:"player_one_lng"`
	PlayerOneLockedAt sql.NullTime    `db:"player_one_locked_at"`
	PlayerOneScore    sql.NullInt64   `db:"player_one_score"`
	PlayerTwoLat      sql.NullFloat64 `db:"player_two_lat"`
	PlayerTwoLng      sql.NullFloat64 `db:"player_two_lng"`
	PlayerTwoLockedAt sql.NullTime    `db:"player_two_locked_at"`
	PlayerTwoScore    sql.NullInt64   `db:"player_two_score"`
	CreatedAt         time.Time       `db:"created_at"`
	StartedAt         sql.NullTime    `db:"started_at"`
	FinishedAt        sql.NullTime    `db:"finished_at"`
}

type roundInsertModel struct {
	ID            string    `db:"id"`
	MatchID       string    `db:"match_id"`
	RoundNumber   int       `db:"round_number"`
	TargetLat     float64   `db:"target_lat"`
	TargetLng     float64   `db:"target_lng"`
	TargetHeading float64   `db:"target_heading"`
	CreatedAt     time.Time `db:"created_at"`
}

// guessColumns names the per-slot columns of the rounds table.
type guessColumns struct {
	lat      string
	lng      string
	lockedAt string
	score    string
}

func guessColumnsFor(slot int) guessColumns {
	prefix := "player_one_"
	if slot == 1 {
		prefix = "player_two_"
	}
	return guessColumns{
		lat:      prefix + "lat",
		lng:      prefix + "lng",
		lockedAt: prefix + "locked_at",
		score:    prefix + "score",
	}
}

func roundInsertFromDomain(r round.Round) roundInsertModel {
	return roundInsertModel{
		ID:            r.ID,
		MatchID:       r.MatchID,
		RoundNumber:   r.Number,
		TargetLat:     r.Target.Lat,
		TargetLng:     r.Target.Lng,
		TargetHeading: r.Target.Heading,
		CreatedAt:     r.CreatedAt,
	}
}

func roundFromRow(row roundTableModel) round.Round {
	return round.Round{
		ID:      row.ID,
		MatchID: row.MatchID,
		Number:  row.RoundNumber,
		Target: round.Target{
			Lat:     row.TargetLat,
			Lng:     row.TargetLng,
			Heading: row.TargetHeading,
		},
		Guesses: [2]round.Guess{
			{
				Lat:      nullFloatPtr(row.PlayerOneLat),
				Lng:      nullFloatPtr(row.PlayerOneLng),
				LockedAt: nullTimePtr(row.PlayerOneLockedAt),
			},
			{
				Lat:      nullFloatPtr(row.PlayerTwoLat),
				Lng:      nullFloatPtr(row.PlayerTwoLng),
				LockedAt: nullTimePtr(row.PlayerTwoLockedAt),
			},
		},
		Scores:     [2]*int{nullIntPtr(row.PlayerOneScore), nullIntPtr(row.PlayerTwoScore)},
		CreatedAt:  row.CreatedAt,
		StartedAt:  nullTimePtr(row.StartedAt),
		FinishedAt: nullTimePtr(row.FinishedAt),
	}
}
