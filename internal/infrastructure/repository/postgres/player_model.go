package postgres

import (
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/player"
)

type playerTableModel struct {
	ID          string    `db:"id"`
	DisplayName string    `db:"display_name"`
	Rating      int       `db:"rating"`
	GamesPlayed int       `db:"games_played"`
	Wins        int       `db:"wins"`
	Losses      int       `db:"losses"`
	Draws       int       `db:"draws"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type playerInsertModel struct {
	ID          string    `db:"id"`
	DisplayName string    `db:"display_name"`
	Rating      int       `db:"rating"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:          row.ID,
		DisplayName: row.DisplayName,
		Rating:      row.Rating,
		GamesPlayed: row.GamesPlayed,
		Wins:        row.Wins,
		Losses:      row.Losses,
		Draws:       row.Draws,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
