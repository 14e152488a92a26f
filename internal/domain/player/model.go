package player

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultRating        = 1000
	MaxDisplayNameLength = 64
)

// Player is a ranked participant. Stats feed the rating K-factor tiers.
type Player struct {
	ID          string
	DisplayName string
	Rating      int
	GamesPlayed int
	Wins        int
	Losses      int
	Draws       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func New(id, displayName string, now time.Time) (Player, error) {
	p := Player{
		ID:          id,
		DisplayName: strings.TrimSpace(displayName),
		Rating:      DefaultRating,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return Player{}, err
	}
	return p, nil
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.DisplayName == "" {
		return fmt.Errorf("player display name is required")
	}
	if len(p.DisplayName) > MaxDisplayNameLength {
		return fmt.Errorf("player display name exceeds %d characters", MaxDisplayNameLength)
	}
	if p.Rating < 0 {
		return fmt.Errorf("player rating must not be negative")
	}

	return nil
}

// Result is one side of a completed match as seen by the stats recorder.
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

// Record returns p with a completed match counted.
func (p Player) Record(result Result) Player {
	p.GamesPlayed++
	switch result {
	case ResultWin:
		p.Wins++
	case ResultLoss:
		p.Losses++
	case ResultDraw:
		p.Draws++
	}
	return p
}
