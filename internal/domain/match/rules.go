package match

import (
	"fmt"
	"time"
)

// Rules stores the tunable parameters of a match.
type Rules struct {
	MaxHealth        int
	RushRoundCap     int
	ForfeitThreshold int
}

func DefaultRules() Rules {
	return Rules{
		MaxHealth:        5000,
		RushRoundCap:     10,
		ForfeitThreshold: 3,
	}
}

// MaxRounds returns the round cap for a format; 0 means unbounded.
func (r Rules) MaxRounds(f Format) int {
	switch f {
	case FormatBestOf3:
		return 3
	case FormatBestOf5:
		return 5
	case FormatBestOf7:
		return 7
	case FormatRush:
		return r.RushRoundCap
	default:
		return 0
	}
}

// New builds a pending match with the counters initialised for its format.
func (r Rules) New(id, playerOneID, playerTwoID, mapID string, format Format, seed int, now time.Time) (Match, error) {
	m := Match{
		ID:           id,
		PlayerOneID:  playerOneID,
		PlayerTwoID:  playerTwoID,
		MapID:        mapID,
		Format:       format,
		Seed:         seed,
		MaxRounds:    r.MaxRounds(format),
		MaxHealth:    r.MaxHealth,
		Status:       StatusPending,
		CurrentRound: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if format.UsesHealth() {
		m.Health = [2]int{r.MaxHealth, r.MaxHealth}
	}
	if err := m.Validate(); err != nil {
		return Match{}, fmt.Errorf("build match: %w", err)
	}
	return m, nil
}

// LocationOffset picks the location index for a round. Round 1 uses
// seed mod count and each following round steps by one.
func LocationOffset(seed, roundNumber, count int) int {
	if count <= 0 {
		return 0
	}
	offset := (seed + roundNumber - 1) % count
	if offset < 0 {
		offset += count
	}
	return offset
}
