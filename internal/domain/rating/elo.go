package rating

import "math"

// Config holds the ELO tuning knobs.
type Config struct {
	KNewPlayer         int
	KMid               int
	KBase              int
	NewPlayerGames     int
	MidRatingThreshold int
	Floor              int
}

func DefaultConfig() Config {
	return Config{
		KNewPlayer:         40,
		KMid:               32,
		KBase:              24,
		NewPlayerGames:     30,
		MidRatingThreshold: 2000,
		Floor:              100,
	}
}

// Participant is a player's standing before the match is rated.
type Participant struct {
	Rating      int
	GamesPlayed int
}

// Outcome is the actual score of the first participant.
type Outcome float64

const (
	OutcomeLoss Outcome = 0
	OutcomeDraw Outcome = 0.5
	OutcomeWin  Outcome = 1
)

// Change is the rating movement of one participant.
type Change struct {
	Before int
	After  int
	// Delta is After - Before, so a floored loss reports the real movement.
	Delta int
}

// Expected is the ELO expected score of a rating against an opponent.
func Expected(rating, opponent int) float64 {
	return 1 / (1 + math.Pow(10, float64(opponent-rating)/400))
}

// KFactor steps down as a player gets experienced and then strong.
func (c Config) KFactor(p Participant) int {
	switch {
	case p.GamesPlayed < c.NewPlayerGames:
		return c.KNewPlayer
	case p.Rating < c.MidRatingThreshold:
		return c.KMid
	default:
		return c.KBase
	}
}

// HealthMargin scales a health-drain win by the health the winner kept.
func HealthMargin(winnerHealth, maxHealth int) float64 {
	if maxHealth <= 0 {
		return 1
	}
	return 1 + 0.5*clamp01(float64(winnerHealth)/float64(maxHealth))
}

// RoundMargin scales a best-of-N win by the round-win differential over
// the wins needed.
func RoundMargin(winnerWins, loserWins, winsNeeded int) float64 {
	if winsNeeded <= 0 {
		return 1
	}
	return 1 + 0.5*clamp01(float64(winnerWins-loserWins)/float64(winsNeeded))
}

// Compute rates a finished match. outcome is from a's point of view and
// margin applies to both sides; draws should pass 1.
func (c Config) Compute(a, b Participant, outcome Outcome, margin float64) (Change, Change) {
	if margin < 1 {
		margin = 1
	}
	return c.change(a, b.Rating, float64(outcome), margin),
		c.change(b, a.Rating, 1-float64(outcome), margin)
}

func (c Config) change(p Participant, opponent int, actual, margin float64) Change {
	k := float64(c.KFactor(p))
	delta := int(math.Round(k * margin * (actual - Expected(p.Rating, opponent))))

	after := p.Rating + delta
	if after < c.Floor {
		after = c.Floor
	}
	return Change{Before: p.Rating, After: after, Delta: after - p.Rating}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
