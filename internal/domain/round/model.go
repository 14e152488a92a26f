package round

import (
	"fmt"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/geo"
)

type State string

const (
	StateOpen      State = "open"
	StateOneLocked State = "one_locked"
	StateFinished  State = "finished"
)

// Target is the panorama both players are looking at.
type Target struct {
	Lat     float64
	Lng     float64
	Heading float64
}

func (t Target) Point() geo.Point {
	return geo.Point{Lat: t.Lat, Lng: t.Lng}
}

// Guess is one player's pin. Lat/Lng are nil until the first submission.
type Guess struct {
	Lat      *float64
	Lng      *float64
	LockedAt *time.Time
}

func (g Guess) Submitted() bool {
	return g.Lat != nil && g.Lng != nil
}

func (g Guess) Locked() bool {
	return g.LockedAt != nil
}

func (g Guess) Point() (geo.Point, bool) {
	if !g.Submitted() {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *g.Lat, Lng: *g.Lng}, true
}

// Round is one location inside a match. Guesses and Scores are indexed by
// player slot (0 = player one, 1 = player two).
type Round struct {
	ID         string
	MatchID    string
	Number     int
	Target     Target
	Guesses    [2]Guess
	Scores     [2]*int
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

func (r Round) State() State {
	switch {
	case r.FinishedAt != nil:
		return StateFinished
	case r.Guesses[0].Locked() || r.Guesses[1].Locked():
		return StateOneLocked
	default:
		return StateOpen
	}
}

func (r Round) IsStarted() bool {
	return r.StartedAt != nil
}

func (r Round) IsFinished() bool {
	return r.FinishedAt != nil
}

func (r Round) BothLocked() bool {
	return r.Guesses[0].Locked() && r.Guesses[1].Locked()
}

func (r Round) AnyGuess() bool {
	return r.Guesses[0].Submitted() || r.Guesses[1].Submitted()
}

// Evaluate scores every submitted guess against the target. Players who
// never guessed get a nil score.
func (r Round) Evaluate() [2]*int {
	var scores [2]*int
	for slot, guess := range r.Guesses {
		point, ok := guess.Point()
		if !ok {
			continue
		}
		score := geo.Score(r.Target.Lat, r.Target.Lng, point.Lat, point.Lng)
		scores[slot] = &score
	}
	return scores
}

// Deadline is when the forced timeout fires for a started round.
func (r Round) Deadline(timeout time.Duration) (time.Time, bool) {
	if r.StartedAt == nil {
		return time.Time{}, false
	}
	return r.StartedAt.Add(timeout), true
}

func (r Round) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("round id is required")
	}
	if r.MatchID == "" {
		return fmt.Errorf("round match id is required")
	}
	if r.Number < 1 {
		return fmt.Errorf("round number must be positive")
	}
	if err := r.Target.Point().Validate(); err != nil {
		return fmt.Errorf("round target: %w", err)
	}
	return nil
}

// LockInTimeout is how long the opponent still has once one player locked
// in: the remaining time to the original deadline, capped at grace.
func LockInTimeout(deadline, now time.Time, grace time.Duration) time.Duration {
	remaining := deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	if remaining < grace {
		return remaining
	}
	return grace
}
