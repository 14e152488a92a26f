package match

// RoundResult is what the ledger needs from a finished round. A nil score
// means the player never guessed and counts as 0.
type RoundResult struct {
	Number   int
	Scores   [2]*int
	AnyGuess bool
}

func scoreOrZero(score *int) int {
	if score == nil {
		return 0
	}
	return *score
}

// ApplyRoundOutcome folds a finished round into the match counters.
//
// Health formats: the lower scorer loses the score gap, ties cost nothing,
// and health may go below zero. Best-of-N formats: the strictly higher
// scorer gains one round win. Either way the consecutive no-guess counter
// resets when anybody guessed and grows otherwise.
func ApplyRoundOutcome(m Match, result RoundResult) Match {
	one := scoreOrZero(result.Scores[SlotOne])
	two := scoreOrZero(result.Scores[SlotTwo])

	if m.Format.UsesHealth() {
		switch {
		case one > two:
			m.Health[SlotTwo] -= one - two
		case two > one:
			m.Health[SlotOne] -= two - one
		}
	} else {
		switch {
		case one > two:
			m.RoundWins[SlotOne]++
		case two > one:
			m.RoundWins[SlotTwo]++
		}
	}

	if result.AnyGuess {
		m.NoGuessRounds = 0
	} else {
		m.NoGuessRounds++
	}
	if result.Number > m.CurrentRound {
		m.CurrentRound = result.Number
	}
	m.SettledRound = result.Number

	return m
}

// Damage is the health a round costs the lower scorer.
func Damage(scoreOne, scoreTwo int) int {
	if scoreOne > scoreTwo {
		return scoreOne - scoreTwo
	}
	return scoreTwo - scoreOne
}
