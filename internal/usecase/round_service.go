package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/geo"
	"github.com/riskibarqy/geoduel/internal/domain/match"
	"github.com/riskibarqy/geoduel/internal/domain/round"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type RoundConfig struct {
	RoundTimeout           time.Duration
	RushRoundTimeout       time.Duration
	LockInGrace            time.Duration
	OpponentUpdateThrottle time.Duration
	// SettleRetryDelay and SettleMaxAttempts bound the retries of a round
	// whose post-finish steps failed.
	SettleRetryDelay  time.Duration
	SettleMaxAttempts int
}

// RoundFinishedHandler receives a round right after it was scored. A
// round whose handling failed is handed over again on retry.
type RoundFinishedHandler interface {
	OnRoundFinished(ctx context.Context, r round.Round) error
}

type SubmitGuessInput struct {
	MatchID     string
	RoundNumber int
	PlayerID    string
	Lat         float64
	Lng         float64
	LockIn      bool
}

// RoundService drives a round from start to finish: guesses, lock-ins,
// the forced timeout and the single idempotent finish path.
type RoundService struct {
	matchRepo match.Repository
	roundRepo round.Repository
	notifier  Notifier
	scheduler Scheduler
	store     EphemeralStore
	finished  RoundFinishedHandler
	cfg       RoundConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewRoundService(
	matchRepo match.Repository,
	roundRepo round.Repository,
	notifier Notifier,
	scheduler Scheduler,
	store EphemeralStore,
	cfg RoundConfig,
	logger *logging.Logger,
) *RoundService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RoundTimeout <= 0 {
		cfg.RoundTimeout = 60 * time.Second
	}
	if cfg.RushRoundTimeout <= 0 {
		cfg.RushRoundTimeout = 30 * time.Second
	}
	if cfg.LockInGrace <= 0 {
		cfg.LockInGrace = 15 * time.Second
	}
	if cfg.OpponentUpdateThrottle <= 0 {
		cfg.OpponentUpdateThrottle = 500 * time.Millisecond
	}
	if cfg.SettleRetryDelay <= 0 {
		cfg.SettleRetryDelay = 2 * time.Second
	}
	if cfg.SettleMaxAttempts <= 0 {
		cfg.SettleMaxAttempts = 5
	}

	return &RoundService{
		matchRepo: matchRepo,
		roundRepo: roundRepo,
		notifier:  notifier,
		scheduler: scheduler,
		store:     store,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *RoundService) SetFinishedHandler(handler RoundFinishedHandler) {
	s.finished = handler
}

func roundTimeoutKey(roundID string) string {
	return "round-timeout:" + roundID
}

func roundStartKey(roundID string) string {
	return "round-start:" + roundID
}

func roundSettleKey(roundID string) string {
	return "round-settle:" + roundID
}

func (s *RoundService) timeoutFor(format match.Format) time.Duration {
	if format == match.FormatRush {
		return s.cfg.RushRoundTimeout
	}
	return s.cfg.RoundTimeout
}

// SubmitGuess stores a player's pin and, when lockIn is set, commits it.
// Guesses from a player who already locked in and guesses on a finished
// round are ignored and the stored round is returned unchanged.
func (s *RoundService) SubmitGuess(ctx context.Context, input SubmitGuessInput) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.SubmitGuess")
	defer span.End()

	input.MatchID = strings.TrimSpace(input.MatchID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.MatchID == "" || input.PlayerID == "" {
		return round.Round{}, fmt.Errorf("%w: match_id and player_id are required", ErrInvalidInput)
	}
	if input.RoundNumber < 1 {
		return round.Round{}, fmt.Errorf("%w: round_number must be positive", ErrInvalidInput)
	}
	if err := (geo.Point{Lat: input.Lat, Lng: input.Lng}).Validate(); err != nil {
		return round.Round{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return round.Round{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return round.Round{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}
	slot, ok := m.SlotOf(input.PlayerID)
	if !ok {
		return round.Round{}, fmt.Errorf("%w: player %s is not in match %s", ErrInvalidInput, input.PlayerID, m.ID)
	}

	current, exists, err := s.roundRepo.GetByMatchAndNumber(ctx, m.ID, input.RoundNumber)
	if err != nil {
		return round.Round{}, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return round.Round{}, fmt.Errorf("%w: match=%s round=%d", ErrNotFound, m.ID, input.RoundNumber)
	}
	span.SetAttributes(
		attribute.String("match.id", m.ID),
		attribute.String("round.id", current.ID),
		attribute.Bool("guess.lock_in", input.LockIn),
	)

	if current.IsFinished() || current.Guesses[slot].Locked() {
		return current, nil
	}
	if !current.IsStarted() {
		return round.Round{}, fmt.Errorf("%w: match=%s round=%d", ErrRoundNotStarted, m.ID, current.Number)
	}

	now := s.now().UTC()
	stored, applied, err := s.roundRepo.SaveGuess(ctx, current.ID, round.GuessUpdate{
		Slot:   int(slot),
		Lat:    input.Lat,
		Lng:    input.Lng,
		LockIn: input.LockIn,
		At:     now,
	})
	if err != nil {
		return round.Round{}, fmt.Errorf("save guess: %w", err)
	}
	if !applied {
		return stored, nil
	}

	if !input.LockIn {
		if stored.Guesses[slot.Other()].Locked() {
			s.publishOpponentGuess(ctx, m, stored, slot, input)
		}
		return stored, nil
	}

	s.notifier.Publish(ctx, MatchChannel(m.ID), EventPlayerLockedIn, PlayerLockedInPayload{
		MatchID:     m.ID,
		RoundID:     stored.ID,
		RoundNumber: stored.Number,
		PlayerID:    input.PlayerID,
	})

	if stored.BothLocked() {
		if _, err := s.Finish(ctx, stored.ID); err != nil {
			s.logger.WarnContext(ctx, "finish after dual lock-in failed", "round_id", stored.ID, "error", err)
		}
		return s.reload(context.WithoutCancel(ctx), stored)
	}

	deadline, _ := stored.Deadline(s.timeoutFor(m.Format))
	s.scheduleTimeout(stored.ID, round.LockInTimeout(deadline, now, s.cfg.LockInGrace))
	return stored, nil
}

// publishOpponentGuess lets a locked-in player watch the other pin move.
// It is throttled per player with a try-lock that is left to expire.
func (s *RoundService) publishOpponentGuess(ctx context.Context, m match.Match, r round.Round, slot match.Slot, input SubmitGuessInput) {
	if s.store == nil {
		return
	}
	key := "guess-throttle:" + r.ID + ":" + input.PlayerID
	_, acquired, err := s.store.TryLock(ctx, key, s.cfg.OpponentUpdateThrottle)
	if err != nil {
		s.logger.WarnContext(ctx, "opponent guess throttle unavailable", "round_id", r.ID, "error", err)
		return
	}
	if !acquired {
		return
	}

	s.notifier.Publish(ctx, PlayerChannel(m.PlayerID(slot.Other())), EventOpponentGuess, OpponentGuessPayload{
		MatchID:     m.ID,
		RoundID:     r.ID,
		RoundNumber: r.Number,
		PlayerID:    input.PlayerID,
		Lat:         input.Lat,
		Lng:         input.Lng,
	})
}

// StartRound officially opens a round and arms its forced timeout. It
// reports false when the round had already started.
func (s *RoundService) StartRound(ctx context.Context, roundID string) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.StartRound")
	defer span.End()

	r, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return false, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("%w: round=%s", ErrNotFound, roundID)
	}
	m, exists, err := s.matchRepo.GetByID(ctx, r.MatchID)
	if err != nil {
		return false, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("%w: match=%s", ErrNotFound, r.MatchID)
	}

	now := s.now().UTC()
	started, err := s.roundRepo.MarkStarted(ctx, roundID, now)
	if err != nil {
		return false, fmt.Errorf("mark round started: %w", err)
	}
	if !started {
		return false, nil
	}

	// The round is live from here on and must always have a timeout.
	ctx = context.WithoutCancel(ctx)
	timeout := s.timeoutFor(m.Format)
	s.scheduleTimeout(r.ID, timeout)

	if _, err := s.matchRepo.MarkInProgress(ctx, m.ID, now); err != nil {
		s.logger.WarnContext(ctx, "mark match in progress failed", "match_id", m.ID, "error", err)
	}

	s.notifier.Publish(ctx, MatchChannel(m.ID), EventRoundStarted, RoundStartedPayload{
		MatchID:     m.ID,
		RoundID:     r.ID,
		RoundNumber: r.Number,
		Lat:         r.Target.Lat,
		Lng:         r.Target.Lng,
		Heading:     r.Target.Heading,
		StartedAt:   formatTime(now),
		Deadline:    formatTime(now.Add(timeout)),
	})
	s.logger.InfoContext(ctx, "round started", "match_id", m.ID, "round_id", r.ID, "round_number", r.Number)
	return true, nil
}

// Finish is the only way a round ends. It returns true for exactly one
// caller; every other caller, whether a late timeout or the second
// lock-in, gets false and must not act on the round. When the steps after
// the finish fail, the winner schedules a retry of them.
func (s *RoundService) Finish(ctx context.Context, roundID string) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Finish")
	defer span.End()

	finished, err := s.roundRepo.MarkFinished(ctx, roundID, s.now().UTC())
	if err != nil {
		return false, fmt.Errorf("mark round finished: %w", err)
	}
	if !finished {
		return false, nil
	}

	ctx = context.WithoutCancel(ctx)
	announced, err := s.settle(ctx, roundID, false)
	if err != nil {
		s.retrySettle(roundID, 1, announced, err)
		return true, err
	}
	return true, nil
}

// settle scores a finished round and hands it on. Every step can be
// repeated: scores are recomputed from the stored guesses and the match
// skips rounds it has already folded in. It reports whether round.finished
// has been published so a retry does not publish it again.
func (s *RoundService) settle(ctx context.Context, roundID string, announced bool) (bool, error) {
	r, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return announced, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return announced, fmt.Errorf("%w: round=%s", ErrNotFound, roundID)
	}

	r.Scores = r.Evaluate()
	if err := s.roundRepo.SaveScores(ctx, r.ID, r.Scores); err != nil {
		return announced, fmt.Errorf("save round scores: %w", err)
	}

	if !announced {
		s.notifier.Publish(ctx, MatchChannel(r.MatchID), EventRoundFinished, roundFinishedPayload(r))
		announced = true
	}

	if s.finished != nil {
		if err := s.finished.OnRoundFinished(ctx, r); err != nil {
			return announced, fmt.Errorf("handle finished round: %w", err)
		}
	}

	if s.scheduler != nil {
		s.scheduler.Cancel(roundTimeoutKey(roundID))
	}
	return announced, nil
}

func (s *RoundService) retrySettle(roundID string, attempt int, announced bool, cause error) {
	if s.scheduler == nil || attempt > s.cfg.SettleMaxAttempts {
		s.logger.Error("round settle abandoned", "round_id", roundID, "attempts", attempt-1, "error", cause)
		return
	}
	s.logger.Warn("round settle failed, retrying", "round_id", roundID, "attempt", attempt, "error", cause)

	err := s.scheduler.Schedule(roundSettleKey(roundID), s.cfg.SettleRetryDelay, func(ctx context.Context) {
		announced, err := s.settle(ctx, roundID, announced)
		if err != nil {
			s.retrySettle(roundID, attempt+1, announced, err)
		}
	})
	if err != nil {
		s.logger.Error("schedule round settle retry failed", "round_id", roundID, "error", err)
	}
}

func (s *RoundService) scheduleTimeout(roundID string, delay time.Duration) {
	if s.scheduler == nil {
		return
	}
	err := s.scheduler.Schedule(roundTimeoutKey(roundID), delay, func(ctx context.Context) {
		if _, err := s.Finish(ctx, roundID); err != nil {
			s.logger.ErrorContext(ctx, "round timeout finish failed", "round_id", roundID, "error", err)
		}
	})
	if err != nil {
		s.logger.Error("schedule round timeout failed", "round_id", roundID, "error", err)
	}
}

func (s *RoundService) scheduleStart(roundID string, delay time.Duration) error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Schedule(roundStartKey(roundID), delay, func(ctx context.Context) {
		if _, err := s.StartRound(ctx, roundID); err != nil {
			s.logger.ErrorContext(ctx, "round start failed", "round_id", roundID, "error", err)
		}
	})
}

func (s *RoundService) reload(ctx context.Context, fallback round.Round) (round.Round, error) {
	r, exists, err := s.roundRepo.GetByID(ctx, fallback.ID)
	if err != nil {
		return round.Round{}, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return fallback, nil
	}
	return r, nil
}
