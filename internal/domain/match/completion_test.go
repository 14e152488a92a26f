package match

import (
	"testing"
)

func TestCheckCompletion(t *testing.T) {
	rules := DefaultRules()

	cases := []struct {
		name       string
		format     Format
		mutate     func(*Match)
		round      int
		terminal   bool
		reason     CompletionReason
		wantWinner string
	}{
		{
			name:     "classic both alive",
			format:   FormatClassic,
			mutate:   func(m *Match) { m.Health = [2]int{10, 5000} },
			round:    1,
			terminal: false,
		},
		{
			name:       "classic elimination",
			format:     FormatClassic,
			mutate:     func(m *Match) { m.Health = [2]int{1200, 0} },
			round:      3,
			terminal:   true,
			reason:     ReasonEliminated,
			wantWinner: "p1",
		},
		{
			name:     "forfeit draw ignores health",
			format:   FormatClassic,
			mutate:   func(m *Match) { m.Health = [2]int{5000, 200}; m.NoGuessRounds = 3 },
			round:    7,
			terminal: true,
			reason:   ReasonForfeit,
		},
		{
			name:     "forfeit below threshold",
			format:   FormatRush,
			mutate:   func(m *Match) { m.NoGuessRounds = 2 },
			round:    2,
			terminal: false,
		},
		{
			name:       "bo3 threshold reached",
			format:     FormatBestOf3,
			mutate:     func(m *Match) { m.RoundWins = [2]int{1, 2} },
			round:      3,
			terminal:   true,
			reason:     ReasonRoundWins,
			wantWinner: "p2",
		},
		{
			name:     "bo5 not yet",
			format:   FormatBestOf5,
			mutate:   func(m *Match) { m.RoundWins = [2]int{2, 2} },
			round:    4,
			terminal: false,
		},
		{
			name:     "bo3 round cap after ties is a draw",
			format:   FormatBestOf3,
			mutate:   func(m *Match) { m.RoundWins = [2]int{1, 1} },
			round:    3,
			terminal: true,
			reason:   ReasonRoundCap,
		},
		{
			name:       "rush cap picks higher health",
			format:     FormatRush,
			mutate:     func(m *Match) { m.Health = [2]int{3000, 4000} },
			round:      10,
			terminal:   true,
			reason:     ReasonRoundCap,
			wantWinner: "p2",
		},
		{
			name:     "no guess counter does not forfeit best-of",
			format:   FormatBestOf7,
			mutate:   func(m *Match) { m.NoGuessRounds = 5 },
			round:    5,
			terminal: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMatch(t, tc.format)
			tc.mutate(&m)

			got := rules.CheckCompletion(m, tc.round)
			if got.Terminal != tc.terminal {
				t.Fatalf("expected terminal=%v, got %+v", tc.terminal, got)
			}
			if !tc.terminal {
				return
			}
			if got.Reason != tc.reason {
				t.Fatalf("expected reason %s, got %s", tc.reason, got.Reason)
			}
			switch {
			case tc.wantWinner == "" && got.WinnerID != nil:
				t.Fatalf("expected draw, got winner %s", *got.WinnerID)
			case tc.wantWinner != "" && (got.WinnerID == nil || *got.WinnerID != tc.wantWinner):
				t.Fatalf("expected winner %s, got %v", tc.wantWinner, got.WinnerID)
			}
		})
	}
}

func TestRulesNew(t *testing.T) {
	rules := DefaultRules()

	classic := newTestMatch(t, FormatClassic)
	if classic.Health != [2]int{5000, 5000} || classic.MaxRounds != 0 {
		t.Fatalf("unexpected classic init: health=%v max=%d", classic.Health, classic.MaxRounds)
	}
	if classic.Status != StatusPending || classic.CurrentRound != 1 {
		t.Fatalf("unexpected classic state: %s round %d", classic.Status, classic.CurrentRound)
	}

	bo5 := newTestMatch(t, FormatBestOf5)
	if bo5.Health != [2]int{} || bo5.MaxRounds != 5 {
		t.Fatalf("unexpected bo5 init: health=%v max=%d", bo5.Health, bo5.MaxRounds)
	}
	if rush := newTestMatch(t, FormatRush); rush.MaxRounds != rules.RushRoundCap {
		t.Fatalf("expected rush cap %d, got %d", rules.RushRoundCap, rush.MaxRounds)
	}

	if _, err := rules.New("m", "p1", "p1", "map", FormatClassic, 0, classic.CreatedAt); err == nil {
		t.Fatalf("expected error for identical players")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatClassic {
		t.Fatalf("expected classic default, got %q err=%v", f, err)
	}
	if f, err := ParseFormat(" BO7 "); err != nil || f != FormatBestOf7 {
		t.Fatalf("expected bo7, got %q err=%v", f, err)
	}
	if _, err := ParseFormat("bo9"); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestLocationOffset(t *testing.T) {
	if got := LocationOffset(2, 1, 4); got != 2 {
		t.Fatalf("expected offset 2, got %d", got)
	}
	if got := LocationOffset(2, 3, 4); got != 0 {
		t.Fatalf("expected wrap to 0, got %d", got)
	}
	if got := LocationOffset(5, 1, 0); got != 0 {
		t.Fatalf("expected 0 for empty map, got %d", got)
	}
}
