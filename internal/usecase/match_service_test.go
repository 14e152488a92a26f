package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/geoduel/internal/domain/match"
	"github.com/riskibarqy/geoduel/internal/domain/player"
	"github.com/riskibarqy/geoduel/internal/infrastructure/repository/memory"
	locationmock "github.com/riskibarqy/geoduel/internal/mocks/domain/location"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMatchService_CreateMatch_InitialisesFormat(t *testing.T) {
	cases := []struct {
		format     match.Format
		wantHealth [2]int
		wantMax    int
	}{
		{format: match.FormatClassic, wantHealth: [2]int{5000, 5000}, wantMax: 0},
		{format: match.FormatRush, wantHealth: [2]int{5000, 5000}, wantMax: 10},
		{format: match.FormatBestOf3, wantMax: 3},
		{format: match.FormatBestOf5, wantMax: 5},
		{format: match.FormatBestOf7, wantMax: 7},
	}

	for _, tc := range cases {
		t.Run(string(tc.format), func(t *testing.T) {
			h := newGameHarness(t)
			m := h.createMatch(t, tc.format)

			assert.Equal(t, tc.wantHealth, m.Health)
			assert.Equal(t, tc.wantMax, m.MaxRounds)
			assert.Equal(t, match.StatusPending, m.Status)
			assert.Equal(t, testMapID, m.MapID)
			assert.Equal(t, 1, h.notifier.Count(PlayerChannel("p1"), EventMatchReady))
			assert.Equal(t, 1, h.notifier.Count(PlayerChannel("p2"), EventMatchReady))
		})
	}
}

func TestMatchService_CreateMatch_Errors(t *testing.T) {
	h := newGameHarness(t)

	cases := []struct {
		name    string
		input   CreateMatchInput
		wantErr error
	}{
		{name: "same player", input: CreateMatchInput{PlayerOneID: "p1", PlayerTwoID: "p1"}, wantErr: ErrInvalidInput},
		{name: "missing player", input: CreateMatchInput{PlayerOneID: "p1", PlayerTwoID: "ghost"}, wantErr: ErrInvalidInput},
		{name: "unknown format", input: CreateMatchInput{PlayerOneID: "p1", PlayerTwoID: "p2", Format: "bo9"}, wantErr: ErrInvalidInput},
		{name: "unknown map", input: CreateMatchInput{PlayerOneID: "p1", PlayerTwoID: "p2", MapID: "atlantis"}, wantErr: ErrNotFound},
		{name: "empty map", input: CreateMatchInput{PlayerOneID: "p1", PlayerTwoID: "p2", MapID: "empty"}, wantErr: ErrNoLocationsAvailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.matchSvc.CreateMatch(t.Context(), tc.input)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	assert.Zero(t, h.notifier.Count("", EventMatchReady))
	_, exists, err := h.rounds.GetByID(t.Context(), "id-1")
	require.NoError(t, err)
	assert.False(t, exists, "failed creation must not leave a round behind")
}

func TestMatchService_CreateMatch_LocationCountFailsUsingMockery(t *testing.T) {
	t.Parallel()

	locations := locationmock.NewRepository(t)
	players := memory.NewPlayerRepository([]player.Player{
		{ID: "p1", DisplayName: "Ada", Rating: 1000},
		{ID: "p2", DisplayName: "Grace", Rating: 1000},
	})
	rounds := memory.NewRoundRepository()
	svc := NewMatchService(memory.NewMatchRepository(rounds), rounds, players, locations, nil, nil,
		nil, newManualScheduler(), &sequenceIDs{}, MatchConfig{}, logging.NewNop())

	dependencyErr := errors.New("location store down")
	locations.
		On("DefaultMapID", mock.Anything).
		Return("world", true, nil).
		Once()
	locations.
		On("Count", mock.Anything, "world").
		Return(0, dependencyErr).
		Once()

	_, err := svc.CreateMatch(context.Background(), CreateMatchInput{PlayerOneID: "p1", PlayerTwoID: "p2"})
	require.ErrorIs(t, err, dependencyErr)
}

func TestMatchService_CreateMatch_NoDefaultMapUsingMockery(t *testing.T) {
	t.Parallel()

	locations := locationmock.NewRepository(t)
	players := memory.NewPlayerRepository([]player.Player{
		{ID: "p1", DisplayName: "Ada", Rating: 1000},
		{ID: "p2", DisplayName: "Grace", Rating: 1000},
	})
	rounds := memory.NewRoundRepository()
	svc := NewMatchService(memory.NewMatchRepository(rounds), rounds, players, locations, nil, nil,
		nil, newManualScheduler(), &sequenceIDs{}, MatchConfig{}, logging.NewNop())

	locations.
		On("DefaultMapID", mock.Anything).
		Return("", false, nil).
		Once()

	_, err := svc.CreateMatch(context.Background(), CreateMatchInput{PlayerOneID: "p1", PlayerTwoID: "p2"})
	require.ErrorIs(t, err, ErrNoLocationsAvailable)
}

func TestMatchService_ClassicFirstRoundDamage(t *testing.T) {
	h := newGameHarness(t)
	m := h.createMatch(t, match.FormatClassic)
	require.Equal(t, 2, m.Seed)

	r1 := h.startRound(t, m.ID, 1)
	assert.Equal(t, 0.0, r1.Target.Lat, "seed 2 on a 4 location map picks the third location")
	assert.Equal(t, 0.0, r1.Target.Lng)

	h.guess(t, m.ID, 1, "p1", 0, 0, true)
	finished := h.guess(t, m.ID, 1, "p2", 0, 111.78, true)
	require.NotNil(t, finished.Scores[0])
	require.NotNil(t, finished.Scores[1])
	assert.Equal(t, 5000, *finished.Scores[0])
	assert.Equal(t, 10, *finished.Scores[1])

	got := h.match(t, m.ID)
	assert.Equal(t, [2]int{5000, 10}, got.Health)
	assert.Equal(t, match.StatusInProgress, got.Status)
	assert.Equal(t, 2, got.CurrentRound)

	r2 := h.round(t, m.ID, 2)
	assert.Equal(t, -10.0, r2.Target.Lat)
	assert.False(t, r2.IsStarted(), "next round starts after the hand-off delay")
	_, scheduled := h.scheduler.Delay(roundStartKey(r2.ID))
	assert.True(t, scheduled)
}

func TestMatchService_BestOfThreeSeries(t *testing.T) {
	h := newGameHarness(t)
	m := h.createMatch(t, match.FormatBestOf3)

	h.playRound(t, m.ID, 1, "p1")
	h.playRound(t, m.ID, 2, "p2")
	require.Equal(t, [2]int{1, 1}, h.match(t, m.ID).RoundWins)
	h.playRound(t, m.ID, 3, "p1")

	got := h.match(t, m.ID)
	require.Equal(t, match.StatusCompleted, got.Status)
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, "p1", *got.WinnerID)
	assert.Equal(t, [2]int{2, 1}, got.RoundWins)

	history, err := h.history.ListByPlayer(t.Context(), "p1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1, "rating applied once")
	require.NotNil(t, got.RatingChange[0])
	require.NotNil(t, got.RatingChange[1])
	assert.Equal(t, -*got.RatingChange[0], *got.RatingChange[1])
	assert.Equal(t, 1, h.notifier.Count(MatchChannel(m.ID), EventMatchFinished))

	_, exists, err := h.rounds.GetByMatchAndNumber(t.Context(), m.ID, 4)
	require.NoError(t, err)
	assert.False(t, exists, "no round after completion")

	p1, _, _ := h.players.GetByID(t.Context(), "p1")
	p2, _, _ := h.players.GetByID(t.Context(), "p2")
	assert.Equal(t, 1000+*got.RatingChange[0], p1.Rating)
	assert.Equal(t, 1, p1.Wins)
	assert.Equal(t, 1, p2.Losses)
	assert.Equal(t, 1, p2.GamesPlayed)
}

func TestMatchService_TimeoutWithoutGuesses(t *testing.T) {
	h := newGameHarness(t)
	m := h.createMatch(t, match.FormatClassic)

	r := h.timeoutRound(t, m.ID, 1)
	require.True(t, r.IsFinished())
	assert.Nil(t, r.Scores[0])
	assert.Nil(t, r.Scores[1])

	got := h.match(t, m.ID)
	assert.Equal(t, [2]int{5000, 5000}, got.Health)
	assert.Equal(t, 1, got.NoGuessRounds)
	assert.Equal(t, match.StatusInProgress, got.Status)
}

func TestMatchService_InactivityForfeitIsDraw(t *testing.T) {
	h := newGameHarness(t)
	m := h.createMatch(t, match.FormatClassic)

	// Player one wins on health before both go idle.
	h.startRound(t, m.ID, 1)
	h.guess(t, m.ID, 1, "p1", 0, 0, true)
	h.guess(t, m.ID, 1, "p2", 0, 111.78, true)
	require.Equal(t, [2]int{5000, 10}, h.match(t, m.ID).Health)

	h.timeoutRound(t, m.ID, 2)
	h.timeoutRound(t, m.ID, 3)
	require.Equal(t, match.StatusInProgress, h.match(t, m.ID).Status)
	h.timeoutRound(t, m.ID, 4)

	got := h.match(t, m.ID)
	require.Equal(t, match.StatusCompleted, got.Status)
	assert.Nil(t, got.WinnerID, "forfeit by inactivity is a draw")
	assert.Equal(t, 3, got.NoGuessRounds)

	last, ok := h.notifier.Last(EventMatchFinished)
	require.True(t, ok)
	payload, ok := last.payload.(MatchFinishedPayload)
	require.True(t, ok)
	assert.Equal(t, string(match.ReasonForfeit), payload.Reason)

	p1, _, _ := h.players.GetByID(t.Context(), "p1")
	assert.Equal(t, 1, p1.Draws)
}

func TestMatchService_ClassicElimination(t *testing.T) {
	h := newGameHarness(t)
	m := h.createMatch(t, match.FormatClassic)

	h.startRound(t, m.ID, 1)
	h.guess(t, m.ID, 1, "p2", 0, 0, true)
	h.guess(t, m.ID, 1, "p1", 0, 111.78, true)

	r := h.startRound(t, m.ID, 2)
	h.guess(t, m.ID, 2, "p2", r.Target.Lat, r.Target.Lng, true)
	h.guess(t, m.ID, 2, "p1", r.Target.Lat, r.Target.Lng+120, true)

	got := h.match(t, m.ID)
	require.Equal(t, match.StatusCompleted, got.Status)
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, "p2", *got.WinnerID)
	assert.LessOrEqual(t, got.Health[0], 0)

	p1, _, _ := h.players.GetByID(t.Context(), "p1")
	assert.GreaterOrEqual(t, p1.Rating, 100)
	assert.Less(t, p1.Rating, 1000)
}

func TestMatchService_RushEndsAtRoundCap(t *testing.T) {
	h := newGameHarness(t)
	m := h.createMatch(t, match.FormatRush)

	for number := 1; number <= 10; number++ {
		r := h.startRound(t, m.ID, number)
		h.guess(t, m.ID, number, "p1", r.Target.Lat, r.Target.Lng, true)
		h.guess(t, m.ID, number, "p2", r.Target.Lat+0.5, r.Target.Lng, true)
	}

	got := h.match(t, m.ID)
	require.Equal(t, match.StatusCompleted, got.Status)
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, "p1", *got.WinnerID)
	assert.Greater(t, got.Health[1], 0)
}

func TestMatchService_OnRoundFinishedIgnoresCompletedMatch(t *testing.T) {
	h := newGameHarness(t)
	m := h.createMatch(t, match.FormatBestOf3)

	h.playRound(t, m.ID, 1, "p1")
	h.playRound(t, m.ID, 2, "p1")
	require.Equal(t, match.StatusCompleted, h.match(t, m.ID).Status)

	r := h.round(t, m.ID, 2)
	require.NoError(t, h.matchSvc.OnRoundFinished(t.Context(), r))
	assert.Equal(t, [2]int{2, 0}, h.match(t, m.ID).RoundWins)
	assert.Equal(t, 1, h.notifier.Count("", EventMatchFinished))
}

func TestMatchService_OnRoundFinishedSkipsSettledRound(t *testing.T) {
	h := newGameHarness(t)
	m := h.createMatch(t, match.FormatClassic)

	r1 := h.playRound(t, m.ID, 1, "p1")
	before := h.match(t, m.ID)
	next := h.round(t, m.ID, 2)
	require.Equal(t, 1, before.SettledRound)

	require.NoError(t, h.matchSvc.OnRoundFinished(t.Context(), r1))

	after := h.match(t, m.ID)
	assert.Equal(t, before.Health, after.Health)
	assert.Equal(t, 2, after.CurrentRound)
	assert.Equal(t, next.ID, h.round(t, m.ID, 2).ID)
	_, exists, err := h.rounds.GetByMatchAndNumber(t.Context(), m.ID, 3)
	require.NoError(t, err)
	assert.False(t, exists)
}
