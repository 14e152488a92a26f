package rating

import "time"

// History is an immutable record of one player's rating change.
type History struct {
	ID             string
	PlayerID       string
	MatchID        string
	RatingBefore   int
	RatingAfter    int
	Delta          int
	OpponentRating int
	CreatedAt      time.Time
}
