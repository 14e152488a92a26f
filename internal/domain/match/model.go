package match

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownFormat = errors.New("unknown match format")

// Format decides how round results turn into a match result.
type Format string

const (
	FormatClassic Format = "classic"
	FormatBestOf3 Format = "bo3"
	FormatBestOf5 Format = "bo5"
	FormatBestOf7 Format = "bo7"
	FormatRush    Format = "rush"
)

var AllFormats = map[Format]struct{}{
	FormatClassic: {},
	FormatBestOf3: {},
	FormatBestOf5: {},
	FormatBestOf7: {},
	FormatRush:    {},
}

func ParseFormat(raw string) (Format, error) {
	value := Format(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return FormatClassic, nil
	}
	if _, ok := AllFormats[value]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
	return value, nil
}

// UsesHealth reports whether rounds drain health (classic, rush) rather
// than award round wins (best-of-N).
func (f Format) UsesHealth() bool {
	return f == FormatClassic || f == FormatRush
}

// WinsNeeded is the round-win threshold for best-of-N formats, 0 otherwise.
func (f Format) WinsNeeded() int {
	switch f {
	case FormatBestOf3:
		return 2
	case FormatBestOf5:
		return 3
	case FormatBestOf7:
		return 4
	default:
		return 0
	}
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Slot is a player's seat in a match. Round guesses and scores are indexed
// by slot.
type Slot int

const (
	SlotOne Slot = 0
	SlotTwo Slot = 1
)

func (s Slot) Other() Slot {
	if s == SlotOne {
		return SlotTwo
	}
	return SlotOne
}

func (s Slot) String() string {
	if s == SlotOne {
		return "player_one"
	}
	return "player_two"
}

// Match is a head-to-head game between two players.
type Match struct {
	ID            string
	PlayerOneID   string
	PlayerTwoID   string
	MapID         string
	Format        Format
	Seed          int
	MaxRounds     int
	MaxHealth     int
	Health        [2]int
	RoundWins     [2]int
	WinnerID      *string
	Status        Status
	NoGuessRounds int
	CurrentRound  int
	SettledRound  int
	RatingChange  [2]*int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

func (m Match) PlayerID(slot Slot) string {
	if slot == SlotOne {
		return m.PlayerOneID
	}
	return m.PlayerTwoID
}

func (m Match) SlotOf(playerID string) (Slot, bool) {
	switch playerID {
	case "":
		return 0, false
	case m.PlayerOneID:
		return SlotOne, true
	case m.PlayerTwoID:
		return SlotTwo, true
	default:
		return 0, false
	}
}

func (m Match) IsCompleted() bool {
	return m.Status == StatusCompleted
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.PlayerOneID == "" || m.PlayerTwoID == "" {
		return fmt.Errorf("match requires two players")
	}
	if m.PlayerOneID == m.PlayerTwoID {
		return fmt.Errorf("match players must differ")
	}
	if m.MapID == "" {
		return fmt.Errorf("match map id is required")
	}
	if _, ok := AllFormats[m.Format]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, m.Format)
	}
	return nil
}
