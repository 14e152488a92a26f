package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/location"
	"github.com/riskibarqy/geoduel/internal/domain/match"
	"github.com/riskibarqy/geoduel/internal/domain/player"
	"github.com/riskibarqy/geoduel/internal/domain/rating"
	"github.com/riskibarqy/geoduel/internal/domain/round"
	"github.com/riskibarqy/geoduel/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/geoduel/internal/platform/cache"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
)

type scheduledTask struct {
	delay time.Duration
	task  func(context.Context)
}

// manualScheduler keeps tasks until a test fires them.
type manualScheduler struct {
	mu        sync.Mutex
	tasks     map[string]scheduledTask
	periodic  map[string]time.Duration
	cancelled []string
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{
		tasks:    make(map[string]scheduledTask),
		periodic: make(map[string]time.Duration),
	}
}

func (s *manualScheduler) Schedule(key string, delay time.Duration, task func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[key] = scheduledTask{delay: delay, task: task}
	return nil
}

func (s *manualScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, key)
	s.cancelled = append(s.cancelled, key)
}

func (s *manualScheduler) Every(name string, interval time.Duration, _ func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periodic[name] = interval
	return nil
}

func (s *manualScheduler) Delay(key string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.tasks[key]
	return item.delay, ok
}

func (s *manualScheduler) Fire(t *testing.T, key string) {
	t.Helper()

	s.mu.Lock()
	item, ok := s.tasks[key]
	delete(s.tasks, key)
	s.mu.Unlock()

	if !ok {
		t.Fatalf("no task scheduled for key %q", key)
	}
	item.task(t.Context())
}

type publishedEvent struct {
	channel string
	event   string
	payload any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (n *recordingNotifier) Publish(_ context.Context, channel, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{channel: channel, event: event, payload: payload})
}

func (n *recordingNotifier) Count(channel, event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	count := 0
	for _, item := range n.events {
		if item.event == event && (channel == "" || item.channel == channel) {
			count++
		}
	}
	return count
}

func (n *recordingNotifier) Last(event string) (publishedEvent, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := len(n.events) - 1; i >= 0; i-- {
		if n.events[i].event == event {
			return n.events[i], true
		}
	}
	return publishedEvent{}, false
}

type sequenceIDs struct {
	next atomic.Int64
}

func (g *sequenceIDs) NewID() (string, error) {
	return fmt.Sprintf("id-%d", g.next.Add(1)), nil
}

const testMapID = "test-map"

// testLocations is a four-location map; seed 2 starts at (0,0).
func testLocations() []location.Location {
	return []location.Location{
		{MapID: testMapID, Position: 0, Lat: 10, Lng: 10},
		{MapID: testMapID, Position: 1, Lat: 20, Lng: 20},
		{MapID: testMapID, Position: 2, Lat: 0, Lng: 0},
		{MapID: testMapID, Position: 3, Lat: -10, Lng: -10},
	}
}

type gameHarness struct {
	players   *memory.PlayerRepository
	rounds    *memory.RoundRepository
	matches   *memory.MatchRepository
	history   *memory.RatingHistoryRepository
	locations *memory.LocationRepository
	store     *cache.Ephemeral
	scheduler *manualScheduler
	notifier  *recordingNotifier

	roundSvc  *RoundService
	matchSvc  *MatchService
	ratingSvc *RatingService

	clock time.Time
}

func newGameHarness(t *testing.T) *gameHarness {
	t.Helper()

	h := &gameHarness{
		players: memory.NewPlayerRepository([]player.Player{
			{ID: "p1", DisplayName: "Ada", Rating: 1000},
			{ID: "p2", DisplayName: "Grace", Rating: 1000},
			{ID: "p3", DisplayName: "Linus", Rating: 1000},
			{ID: "p4", DisplayName: "Ken", Rating: 1000},
		}),
		rounds:  memory.NewRoundRepository(),
		history: memory.NewRatingHistoryRepository(),
		locations: memory.NewLocationRepository(
			[]location.Map{{ID: testMapID, Name: "Test", IsDefault: true}, {ID: "empty", Name: "Empty"}},
			testLocations(),
		),
		store:     cache.NewEphemeral(cache.NewStore(0)),
		scheduler: newManualScheduler(),
		notifier:  &recordingNotifier{},
		clock:     time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
	h.matches = memory.NewMatchRepository(h.rounds)

	logger := logging.NewNop()
	ids := &sequenceIDs{}
	now := func() time.Time { return h.clock }

	h.roundSvc = NewRoundService(h.matches, h.rounds, h.notifier, h.scheduler, h.store, RoundConfig{}, logger)
	h.roundSvc.now = now
	h.ratingSvc = NewRatingService(h.players, h.matches, h.history, ids, rating.DefaultConfig(), logger)
	h.ratingSvc.now = now
	h.matchSvc = NewMatchService(h.matches, h.rounds, h.players, h.locations, h.roundSvc, h.ratingSvc,
		h.notifier, h.scheduler, ids, MatchConfig{StartDelay: 2 * time.Second, NextRoundDelay: 3 * time.Second}, logger)
	h.matchSvc.now = now
	h.matchSvc.randIntN = func(int) int { return 2 }

	return h
}

func (h *gameHarness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

func (h *gameHarness) createMatch(t *testing.T, format match.Format) match.Match {
	t.Helper()

	m, err := h.matchSvc.CreateMatch(t.Context(), CreateMatchInput{
		PlayerOneID: "p1",
		PlayerTwoID: "p2",
		Format:      string(format),
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	return m
}

func (h *gameHarness) round(t *testing.T, matchID string, number int) round.Round {
	t.Helper()

	r, err := h.matchSvc.GetRound(t.Context(), matchID, number)
	if err != nil {
		t.Fatalf("get round %d: %v", number, err)
	}
	return r
}

func (h *gameHarness) match(t *testing.T, matchID string) match.Match {
	t.Helper()

	m, err := h.matchSvc.GetMatch(t.Context(), matchID)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	return m
}

// startRound fires the delayed start of a round.
func (h *gameHarness) startRound(t *testing.T, matchID string, number int) round.Round {
	t.Helper()

	r := h.round(t, matchID, number)
	h.scheduler.Fire(t, roundStartKey(r.ID))
	return h.round(t, matchID, number)
}

func (h *gameHarness) guess(t *testing.T, matchID string, number int, playerID string, lat, lng float64, lockIn bool) round.Round {
	t.Helper()

	r, err := h.roundSvc.SubmitGuess(t.Context(), SubmitGuessInput{
		MatchID:     matchID,
		RoundNumber: number,
		PlayerID:    playerID,
		Lat:         lat,
		Lng:         lng,
		LockIn:      lockIn,
	})
	if err != nil {
		t.Fatalf("submit guess for %s: %v", playerID, err)
	}
	return r
}

// playRound starts round number and locks in both players. The winner
// guesses the target exactly and the other guesses ten degrees north.
func (h *gameHarness) playRound(t *testing.T, matchID string, number int, winnerID string) round.Round {
	t.Helper()

	r := h.startRound(t, matchID, number)
	target := r.Target
	for _, playerID := range []string{"p1", "p2"} {
		lat := target.Lat + 10
		if playerID == winnerID {
			lat = target.Lat
		}
		h.guess(t, matchID, number, playerID, lat, target.Lng, true)
	}
	return h.round(t, matchID, number)
}

// timeoutRound starts round number and lets its forced timeout fire.
func (h *gameHarness) timeoutRound(t *testing.T, matchID string, number int) round.Round {
	t.Helper()

	r := h.startRound(t, matchID, number)
	h.advance(60 * time.Second)
	h.scheduler.Fire(t, roundTimeoutKey(r.ID))
	return h.round(t, matchID, number)
}

var errInjected = errors.New("injected failure")

// failingRounds fails the next N calls of selected writes, then delegates.
type failingRounds struct {
	round.Repository
	saveScores atomic.Int32
	create     atomic.Int32
}

func (r *failingRounds) SaveScores(ctx context.Context, roundID string, scores [2]*int) error {
	if r.saveScores.Add(-1) >= 0 {
		return errInjected
	}
	return r.Repository.SaveScores(ctx, roundID, scores)
}

func (r *failingRounds) Create(ctx context.Context, item round.Round) error {
	if r.create.Add(-1) >= 0 {
		return errInjected
	}
	return r.Repository.Create(ctx, item)
}

type failingMatches struct {
	match.Repository
	saveOutcome    atomic.Int32
	markInProgress atomic.Int32
}

func (r *failingMatches) SaveOutcome(ctx context.Context, matchID string, outcome match.Outcome, updatedAt time.Time) error {
	if r.saveOutcome.Add(-1) >= 0 {
		return errInjected
	}
	return r.Repository.SaveOutcome(ctx, matchID, outcome, updatedAt)
}

func (r *failingMatches) MarkInProgress(ctx context.Context, matchID string, at time.Time) (bool, error) {
	if r.markInProgress.Add(-1) >= 0 {
		return false, errInjected
	}
	return r.Repository.MarkInProgress(ctx, matchID, at)
}

// withFailingRepos routes both services through failure-injecting repos.
func (h *gameHarness) withFailingRepos() (*failingRounds, *failingMatches) {
	rounds := &failingRounds{Repository: h.rounds}
	matches := &failingMatches{Repository: h.matches}
	h.roundSvc.roundRepo = rounds
	h.roundSvc.matchRepo = matches
	h.matchSvc.roundRepo = rounds
	h.matchSvc.matchRepo = matches
	return rounds, matches
}
