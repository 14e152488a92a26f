package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/location"
	"github.com/riskibarqy/geoduel/internal/domain/match"
	"github.com/riskibarqy/geoduel/internal/domain/player"
	"github.com/riskibarqy/geoduel/internal/domain/round"
	"github.com/riskibarqy/geoduel/internal/platform/id"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type MatchConfig struct {
	Rules match.Rules
	// StartDelay gives clients time to subscribe before round 1 starts.
	StartDelay     time.Duration
	NextRoundDelay time.Duration
}

type CreateMatchInput struct {
	PlayerOneID string
	PlayerTwoID string
	MapID       string
	Format      string
}

// MatchService creates matches and folds finished rounds into them.
type MatchService struct {
	matchRepo    match.Repository
	roundRepo    round.Repository
	playerRepo   player.Repository
	locationRepo location.Repository
	rounds       *RoundService
	ratings      *RatingService
	notifier     Notifier
	scheduler    Scheduler
	ids          id.Generator
	cfg          MatchConfig
	logger       *logging.Logger
	now          func() time.Time
	randIntN     func(n int) int
}

func NewMatchService(
	matchRepo match.Repository,
	roundRepo round.Repository,
	playerRepo player.Repository,
	locationRepo location.Repository,
	rounds *RoundService,
	ratings *RatingService,
	notifier Notifier,
	scheduler Scheduler,
	ids id.Generator,
	cfg MatchConfig,
	logger *logging.Logger,
) *MatchService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if cfg.Rules == (match.Rules{}) {
		cfg.Rules = match.DefaultRules()
	}
	if cfg.StartDelay < 0 {
		cfg.StartDelay = 0
	}
	if cfg.NextRoundDelay < 0 {
		cfg.NextRoundDelay = 0
	}

	svc := &MatchService{
		matchRepo:    matchRepo,
		roundRepo:    roundRepo,
		playerRepo:   playerRepo,
		locationRepo: locationRepo,
		rounds:       rounds,
		ratings:      ratings,
		notifier:     notifier,
		scheduler:    scheduler,
		ids:          ids,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
		randIntN:     rand.IntN,
	}
	if rounds != nil {
		rounds.SetFinishedHandler(svc)
	}
	return svc
}

// CreateMatch pairs two players on a map. Nothing is persisted unless the
// match and its first round can both be stored.
func (s *MatchService) CreateMatch(ctx context.Context, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.CreateMatch")
	defer span.End()

	input.PlayerOneID = strings.TrimSpace(input.PlayerOneID)
	input.PlayerTwoID = strings.TrimSpace(input.PlayerTwoID)
	input.MapID = strings.TrimSpace(input.MapID)
	if input.PlayerOneID == "" || input.PlayerTwoID == "" {
		return match.Match{}, fmt.Errorf("%w: both player ids are required", ErrInvalidInput)
	}
	if input.PlayerOneID == input.PlayerTwoID {
		return match.Match{}, fmt.Errorf("%w: a player cannot play against themselves", ErrInvalidInput)
	}
	format, err := match.ParseFormat(input.Format)
	if err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	players, err := s.playerRepo.GetByIDs(ctx, []string{input.PlayerOneID, input.PlayerTwoID})
	if err != nil {
		return match.Match{}, fmt.Errorf("get players: %w", err)
	}
	if len(players) != 2 {
		return match.Match{}, fmt.Errorf("%w: both players must exist", ErrInvalidInput)
	}

	mapID, err := s.resolveMap(ctx, input.MapID)
	if err != nil {
		return match.Match{}, err
	}
	count, err := s.locationRepo.Count(ctx, mapID)
	if err != nil {
		return match.Match{}, fmt.Errorf("count locations: %w", err)
	}
	if count == 0 {
		return match.Match{}, fmt.Errorf("%w: map=%s", ErrNoLocationsAvailable, mapID)
	}

	matchID, err := s.ids.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}
	now := s.now().UTC()
	seed := s.randIntN(count)

	m, err := s.cfg.Rules.New(matchID, input.PlayerOneID, input.PlayerTwoID, mapID, format, seed, now)
	if err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	first, err := s.buildRound(ctx, m, 1, count, now)
	if err != nil {
		return match.Match{}, err
	}
	if err := s.matchRepo.CreateWithFirstRound(ctx, m, first); err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}
	span.SetAttributes(attribute.String("match.id", m.ID), attribute.String("match.format", string(format)))

	startsAt := formatTime(now.Add(s.cfg.StartDelay))
	for _, slot := range []match.Slot{match.SlotOne, match.SlotTwo} {
		s.notifier.Publish(ctx, PlayerChannel(m.PlayerID(slot)), EventMatchReady, MatchReadyPayload{
			MatchID:    m.ID,
			OpponentID: m.PlayerID(slot.Other()),
			Format:     string(m.Format),
			MapID:      m.MapID,
			StartsAt:   startsAt,
		})
	}

	if err := s.rounds.scheduleStart(first.ID, s.cfg.StartDelay); err != nil {
		s.logger.ErrorContext(ctx, "schedule first round start failed", "match_id", m.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "match created",
		"match_id", m.ID,
		"format", string(m.Format),
		"map_id", m.MapID,
		"seed", seed,
	)
	return m, nil
}

func (s *MatchService) resolveMap(ctx context.Context, mapID string) (string, error) {
	if mapID == "" {
		defaultID, ok, err := s.locationRepo.DefaultMapID(ctx)
		if err != nil {
			return "", fmt.Errorf("get default map: %w", err)
		}
		if !ok {
			return "", fmt.Errorf("%w: no default map configured", ErrNoLocationsAvailable)
		}
		return defaultID, nil
	}

	_, ok, err := s.locationRepo.GetMap(ctx, mapID)
	if err != nil {
		return "", fmt.Errorf("get map: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: map=%s", ErrNotFound, mapID)
	}
	return mapID, nil
}

func (s *MatchService) buildRound(ctx context.Context, m match.Match, number, count int, now time.Time) (round.Round, error) {
	offset := match.LocationOffset(m.Seed, number, count)
	loc, ok, err := s.locationRepo.At(ctx, m.MapID, offset)
	if err != nil {
		return round.Round{}, fmt.Errorf("get location: %w", err)
	}
	if !ok {
		return round.Round{}, fmt.Errorf("%w: map=%s offset=%d", ErrNoLocationsAvailable, m.MapID, offset)
	}

	roundID, err := s.ids.NewID()
	if err != nil {
		return round.Round{}, fmt.Errorf("generate round id: %w", err)
	}
	r := round.Round{
		ID:        roundID,
		MatchID:   m.ID,
		Number:    number,
		Target:    round.Target{Lat: loc.Lat, Lng: loc.Lng, Heading: loc.Heading},
		CreatedAt: now,
	}
	if err := r.Validate(); err != nil {
		return round.Round{}, fmt.Errorf("build round: %w", err)
	}
	return r, nil
}

// OnRoundFinished runs the post-round steps in order: ledger, persist,
// completion check, then either the next round or the rating, stats and
// match-finished steps. It may be called again for the same round after a
// failure; a round already folded into the match is not applied twice.
func (s *MatchService) OnRoundFinished(ctx context.Context, r round.Round) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.OnRoundFinished")
	defer span.End()

	m, exists, err := s.matchRepo.GetByID(ctx, r.MatchID)
	if err != nil {
		return fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: match=%s", ErrNotFound, r.MatchID)
	}
	if m.IsCompleted() {
		return nil
	}

	now := s.now().UTC()
	if m.Status == match.StatusPending {
		if _, err := s.matchRepo.MarkInProgress(ctx, m.ID, now); err != nil {
			return fmt.Errorf("mark match in progress: %w", err)
		}
		m.Status = match.StatusInProgress
	}

	settled := m.SettledRound >= r.Number
	if !settled {
		m = match.ApplyRoundOutcome(m, match.RoundResult{
			Number:   r.Number,
			Scores:   r.Scores,
			AnyGuess: r.AnyGuess(),
		})
	}

	completion := s.cfg.Rules.CheckCompletion(m, r.Number)
	if !completion.Terminal {
		return s.advance(ctx, m, r.Number+1, now)
	}
	if !settled {
		if err := s.matchRepo.SaveOutcome(ctx, m.ID, m.Outcome(), now); err != nil {
			return fmt.Errorf("save match outcome: %w", err)
		}
	}
	return s.complete(ctx, m, completion, now)
}

// advance opens round next and stores it as current together with the
// ledger. A round left behind by an earlier failed attempt is reused.
func (s *MatchService) advance(ctx context.Context, m match.Match, next int, now time.Time) error {
	r, exists, err := s.roundRepo.GetByMatchAndNumber(ctx, m.ID, next)
	if err != nil {
		return fmt.Errorf("get round %d: %w", next, err)
	}
	if !exists {
		count, err := s.locationRepo.Count(ctx, m.MapID)
		if err != nil {
			return fmt.Errorf("count locations: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("%w: map=%s", ErrNoLocationsAvailable, m.MapID)
		}

		r, err = s.buildRound(ctx, m, next, count, now)
		if err != nil {
			return err
		}
		if err := s.roundRepo.Create(ctx, r); err != nil {
			return fmt.Errorf("create round: %w", err)
		}
	}

	m.CurrentRound = next
	if err := s.matchRepo.SaveOutcome(ctx, m.ID, m.Outcome(), now); err != nil {
		return fmt.Errorf("save match outcome: %w", err)
	}

	if r.IsStarted() {
		return nil
	}
	if err := s.rounds.scheduleStart(r.ID, s.cfg.NextRoundDelay); err != nil {
		return fmt.Errorf("schedule round start: %w", err)
	}
	return nil
}

func (s *MatchService) complete(ctx context.Context, m match.Match, completion match.Completion, now time.Time) error {
	completed, err := s.matchRepo.MarkCompleted(ctx, m.ID, completion.WinnerID, now)
	if err != nil {
		return fmt.Errorf("mark match completed: %w", err)
	}
	if !completed {
		return nil
	}
	m.WinnerID = completion.WinnerID
	m.Status = match.StatusCompleted
	m.CompletedAt = &now

	var changes [2]int
	var errs []error
	if s.ratings != nil {
		rated, err := s.ratings.ApplyMatchResult(ctx, m)
		if err != nil {
			errs = append(errs, fmt.Errorf("apply rating: %w", err))
		}
		for slot, change := range rated {
			changes[slot] = change.Delta
		}
	}
	if err := s.recordStats(ctx, m, now); err != nil {
		errs = append(errs, err)
	}

	s.notifier.Publish(ctx, MatchChannel(m.ID), EventMatchFinished, matchFinishedPayload(m, completion.Reason, changes))
	s.logger.InfoContext(ctx, "match completed",
		"match_id", m.ID,
		"reason", string(completion.Reason),
		"draw", completion.WinnerID == nil,
	)
	return errors.Join(errs...)
}

// recordStats counts the finished match on both players.
func (s *MatchService) recordStats(ctx context.Context, m match.Match, now time.Time) error {
	for _, slot := range []match.Slot{match.SlotOne, match.SlotTwo} {
		playerID := m.PlayerID(slot)
		result := player.ResultDraw
		if m.WinnerID != nil {
			result = player.ResultLoss
			if *m.WinnerID == playerID {
				result = player.ResultWin
			}
		}
		if err := s.playerRepo.RecordResult(ctx, playerID, result, now); err != nil {
			return fmt.Errorf("record result for player %s: %w", playerID, err)
		}
	}
	return nil
}

func (s *MatchService) GetMatch(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}
	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return m, nil
}

func (s *MatchService) GetRound(ctx context.Context, matchID string, number int) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetRound")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" || number < 1 {
		return round.Round{}, fmt.Errorf("%w: match_id and a positive round number are required", ErrInvalidInput)
	}
	r, exists, err := s.roundRepo.GetByMatchAndNumber(ctx, matchID, number)
	if err != nil {
		return round.Round{}, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return round.Round{}, fmt.Errorf("%w: match=%s round=%d", ErrNotFound, matchID, number)
	}
	return r, nil
}
