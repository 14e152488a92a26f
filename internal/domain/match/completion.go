package match

type CompletionReason string

const (
	ReasonEliminated CompletionReason = "eliminated"
	ReasonForfeit    CompletionReason = "forfeit"
	ReasonRoundWins  CompletionReason = "round_wins"
	ReasonRoundCap   CompletionReason = "round_cap"
)

type Completion struct {
	Terminal bool
	Reason   CompletionReason
	// WinnerID is nil for a draw.
	WinnerID *string
}

// CheckCompletion decides whether the match ends after roundNumber.
// Checks run in order: elimination, inactivity forfeit (health formats),
// round-win threshold, then the per-format round cap.
func (r Rules) CheckCompletion(m Match, roundNumber int) Completion {
	if m.Format.UsesHealth() {
		if m.Health[SlotOne] <= 0 || m.Health[SlotTwo] <= 0 {
			return Completion{Terminal: true, Reason: ReasonEliminated, WinnerID: leader(m)}
		}
		if r.ForfeitThreshold > 0 && m.NoGuessRounds >= r.ForfeitThreshold {
			return Completion{Terminal: true, Reason: ReasonForfeit}
		}
	} else if needed := m.Format.WinsNeeded(); needed > 0 {
		if m.RoundWins[SlotOne] >= needed || m.RoundWins[SlotTwo] >= needed {
			return Completion{Terminal: true, Reason: ReasonRoundWins, WinnerID: leader(m)}
		}
	}

	if m.MaxRounds > 0 && roundNumber >= m.MaxRounds {
		return Completion{Terminal: true, Reason: ReasonRoundCap, WinnerID: leader(m)}
	}

	return Completion{}
}

// leader returns the player ahead on the format's counter, nil when level.
func leader(m Match) *string {
	one, two := m.RoundWins[SlotOne], m.RoundWins[SlotTwo]
	if m.Format.UsesHealth() {
		one, two = m.Health[SlotOne], m.Health[SlotTwo]
	}

	var winner string
	switch {
	case one > two:
		winner = m.PlayerOneID
	case two > one:
		winner = m.PlayerTwoID
	default:
		return nil
	}
	return &winner
}
