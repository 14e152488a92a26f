package httpapi

import (
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/match"
	"github.com/riskibarqy/geoduel/internal/domain/player"
	"github.com/riskibarqy/geoduel/internal/domain/rating"
	"github.com/riskibarqy/geoduel/internal/domain/round"
)

type playerDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Rating      int    `json:"rating"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
	CreatedAt   string `json:"created_at"`
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Rating:      p.Rating,
		GamesPlayed: p.GamesPlayed,
		Wins:        p.Wins,
		Losses:      p.Losses,
		Draws:       p.Draws,
		CreatedAt:   formatTime(p.CreatedAt),
	}
}

type ratingHistoryDTO struct {
	MatchID        string `json:"match_id"`
	RatingBefore   int    `json:"rating_before"`
	RatingAfter    int    `json:"rating_after"`
	Delta          int    `json:"delta"`
	OpponentRating int    `json:"opponent_rating"`
	CreatedAt      string `json:"created_at"`
}

func ratingHistoryToDTO(h rating.History) ratingHistoryDTO {
	return ratingHistoryDTO{
		MatchID:        h.MatchID,
		RatingBefore:   h.RatingBefore,
		RatingAfter:    h.RatingAfter,
		Delta:          h.Delta,
		OpponentRating: h.OpponentRating,
		CreatedAt:      formatTime(h.CreatedAt),
	}
}

type matchPlayerDTO struct {
	PlayerID     string `json:"player_id"`
	Health       int    `json:"health"`
	RoundWins    int    `json:"round_wins"`
	RatingChange *int   `json:"rating_change"`
}

type matchDTO struct {
	ID           string            `json:"id"`
	MapID        string            `json:"map_id"`
	Format       string            `json:"format"`
	Status       string            `json:"status"`
	CurrentRound int               `json:"current_round"`
	MaxRounds    int               `json:"max_rounds"`
	MaxHealth    int               `json:"max_health"`
	Players      [2]matchPlayerDTO `json:"players"`
	WinnerID     *string           `json:"winner_id"`
	CreatedAt    string            `json:"created_at"`
	CompletedAt  *string           `json:"completed_at"`
}

func matchToDTO(m match.Match) matchDTO {
	out := matchDTO{
		ID:           m.ID,
		MapID:        m.MapID,
		Format:       string(m.Format),
		Status:       string(m.Status),
		CurrentRound: m.CurrentRound,
		MaxRounds:    m.MaxRounds,
		MaxHealth:    m.MaxHealth,
		WinnerID:     m.WinnerID,
		CreatedAt:    formatTime(m.CreatedAt),
		CompletedAt:  formatTimePtr(m.CompletedAt),
	}
	for _, slot := range []match.Slot{match.SlotOne, match.SlotTwo} {
		out.Players[slot] = matchPlayerDTO{
			PlayerID:     m.PlayerID(slot),
			Health:       m.Health[slot],
			RoundWins:    m.RoundWins[slot],
			RatingChange: m.RatingChange[slot],
		}
	}
	return out
}

type targetDTO struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Heading float64 `json:"heading"`
}

type guessDTO struct {
	PlayerID string   `json:"player_id"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	LockedIn bool     `json:"locked_in"`
	Score    *int     `json:"score,omitempty"`
}

type roundDTO struct {
	ID         string      `json:"id"`
	MatchID    string      `json:"match_id"`
	Number     int         `json:"number"`
	State      string      `json:"state"`
	Target     *targetDTO  `json:"target,omitempty"`
	Guesses    [2]guessDTO `json:"guesses"`
	StartedAt  *string     `json:"started_at"`
	FinishedAt *string     `json:"finished_at"`
}

// roundToDTO renders a round for viewerID. Before the finish only the
// viewer's own guess coordinates are shown.
func roundToDTO(m match.Match, r round.Round, viewerID string) roundDTO {
	out := roundDTO{
		ID:         r.ID,
		MatchID:    r.MatchID,
		Number:     r.Number,
		State:      string(r.State()),
		StartedAt:  formatTimePtr(r.StartedAt),
		FinishedAt: formatTimePtr(r.FinishedAt),
	}
	if r.IsStarted() {
		out.Target = &targetDTO{Lat: r.Target.Lat, Lng: r.Target.Lng, Heading: r.Target.Heading}
	}

	viewerSlot, isPlayer := m.SlotOf(viewerID)
	for _, slot := range []match.Slot{match.SlotOne, match.SlotTwo} {
		guess := r.Guesses[slot]
		item := guessDTO{
			PlayerID: m.PlayerID(slot),
			LockedIn: guess.Locked(),
		}
		if r.IsFinished() || (isPlayer && slot == viewerSlot) {
			item.Lat = guess.Lat
			item.Lng = guess.Lng
		}
		if r.IsFinished() {
			item.Score = r.Scores[slot]
		}
		out.Guesses[slot] = item
	}
	return out
}

type queueStatusDTO struct {
	PlayerID  string `json:"player_id"`
	Queued    bool   `json:"queued"`
	QueueSize int    `json:"queue_size,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	out := formatTime(*t)
	return &out
}
