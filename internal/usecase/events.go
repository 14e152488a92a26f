package usecase

import (
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/match"
	"github.com/riskibarqy/geoduel/internal/domain/round"
)

const (
	EventMatchReady     = "match.ready"
	EventRoundStarted   = "round.started"
	EventRoundFinished  = "round.finished"
	EventMatchFinished  = "match.finished"
	EventOpponentGuess  = "opponent.guess"
	EventPlayerLockedIn = "player.locked_in"
)

func MatchChannel(matchID string) string {
	return "match." + matchID
}

func PlayerChannel(playerID string) string {
	return "player." + playerID
}

type MatchReadyPayload struct {
	MatchID    string `json:"match_id"`
	OpponentID string `json:"opponent_id"`
	Format     string `json:"format"`
	MapID      string `json:"map_id"`
	StartsAt   string `json:"starts_at"`
}

type RoundStartedPayload struct {
	MatchID     string  `json:"match_id"`
	RoundID     string  `json:"round_id"`
	RoundNumber int     `json:"round_number"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Heading     float64 `json:"heading"`
	StartedAt   string  `json:"started_at"`
	Deadline    string  `json:"deadline"`
}

type GuessPayload struct {
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	LockedIn bool     `json:"locked_in"`
	Score    *int     `json:"score"`
}

type RoundFinishedPayload struct {
	MatchID     string          `json:"match_id"`
	RoundID     string          `json:"round_id"`
	RoundNumber int             `json:"round_number"`
	TargetLat   float64         `json:"target_lat"`
	TargetLng   float64         `json:"target_lng"`
	Guesses     [2]GuessPayload `json:"guesses"`
}

type MatchFinishedPayload struct {
	MatchID      string  `json:"match_id"`
	WinnerID     *string `json:"winner_id"`
	Reason       string  `json:"reason"`
	Health       [2]int  `json:"health"`
	RoundWins    [2]int  `json:"round_wins"`
	RatingChange [2]int  `json:"rating_change"`
}

type OpponentGuessPayload struct {
	MatchID     string  `json:"match_id"`
	RoundID     string  `json:"round_id"`
	RoundNumber int     `json:"round_number"`
	PlayerID    string  `json:"player_id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

type PlayerLockedInPayload struct {
	MatchID     string `json:"match_id"`
	RoundID     string `json:"round_id"`
	RoundNumber int    `json:"round_number"`
	PlayerID    string `json:"player_id"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func roundFinishedPayload(r round.Round) RoundFinishedPayload {
	payload := RoundFinishedPayload{
		MatchID:     r.MatchID,
		RoundID:     r.ID,
		RoundNumber: r.Number,
		TargetLat:   r.Target.Lat,
		TargetLng:   r.Target.Lng,
	}
	for slot, guess := range r.Guesses {
		payload.Guesses[slot] = GuessPayload{
			Lat:      guess.Lat,
			Lng:      guess.Lng,
			LockedIn: guess.Locked(),
			Score:    r.Scores[slot],
		}
	}
	return payload
}

func matchFinishedPayload(m match.Match, reason match.CompletionReason, changes [2]int) MatchFinishedPayload {
	return MatchFinishedPayload{
		MatchID:      m.ID,
		WinnerID:     m.WinnerID,
		Reason:       string(reason),
		Health:       m.Health,
		RoundWins:    m.RoundWins,
		RatingChange: changes,
	}
}
