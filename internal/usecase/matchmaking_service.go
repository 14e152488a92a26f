package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/match"
	"github.com/riskibarqy/geoduel/internal/domain/player"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	matchmakingQueueKey = "matchmaking:queue"
	matchmakingLockKey  = "matchmaking:drain-lock"
	matchmakingDrainKey = "matchmaking-drain"
)

type MatchmakingConfig struct {
	QueueTTL          time.Duration
	LockTTL           time.Duration
	RedrainDelay      time.Duration
	DrainInterval     time.Duration
	CreateConcurrency int
}

// MatchCreator is the part of MatchService the queue needs.
type MatchCreator interface {
	CreateMatch(ctx context.Context, input CreateMatchInput) (match.Match, error)
}

// MatchmakingService owns the shared FIFO queue. Every change to the list
// goes through EphemeralStore.UpdateList and only one drain runs at a time.
type MatchmakingService struct {
	store      EphemeralStore
	playerRepo player.Repository
	creator    MatchCreator
	scheduler  Scheduler
	cfg        MatchmakingConfig
	logger     *logging.Logger
}

func NewMatchmakingService(
	store EphemeralStore,
	playerRepo player.Repository,
	creator MatchCreator,
	scheduler Scheduler,
	cfg MatchmakingConfig,
	logger *logging.Logger,
) *MatchmakingService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.QueueTTL <= 0 {
		cfg.QueueTTL = 5 * time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	if cfg.RedrainDelay <= 0 {
		cfg.RedrainDelay = time.Second
	}
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = 5 * time.Second
	}
	if cfg.CreateConcurrency <= 0 {
		cfg.CreateConcurrency = 4
	}

	return &MatchmakingService{
		store:      store,
		playerRepo: playerRepo,
		creator:    creator,
		scheduler:  scheduler,
		cfg:        cfg,
		logger:     logger,
	}
}

// Enqueue puts the player at the back of the queue, moving them there if
// they were already waiting, and returns the queue length.
func (s *MatchmakingService) Enqueue(ctx context.Context, playerID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchmakingService.Enqueue")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return 0, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}
	_, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return 0, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}

	queue, err := s.store.UpdateList(ctx, matchmakingQueueKey, s.cfg.QueueTTL, func(current []string) []string {
		return append(without(current, playerID), playerID)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: enqueue: %v", ErrDependencyUnavailable, err)
	}

	if len(queue) >= 2 {
		s.scheduleDrain(0)
	}
	return len(queue), nil
}

func (s *MatchmakingService) Leave(ctx context.Context, playerID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchmakingService.Leave")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}
	_, err := s.store.UpdateList(ctx, matchmakingQueueKey, s.cfg.QueueTTL, func(current []string) []string {
		return without(current, playerID)
	})
	if err != nil {
		return fmt.Errorf("%w: leave queue: %v", ErrDependencyUnavailable, err)
	}
	return nil
}

func (s *MatchmakingService) Queue(ctx context.Context) ([]string, error) {
	items, err := s.store.List(ctx, matchmakingQueueKey)
	if err != nil {
		return nil, fmt.Errorf("%w: list queue: %v", ErrDependencyUnavailable, err)
	}
	return items, nil
}

type pairResult struct {
	players [2]string
	matchID string
	err     error
}

// Drain pairs the queue front to back and creates a match per pair. It
// returns (0, nil) when another drain holds the lock. Pairs whose match
// could not be created stay queued and their errors are returned joined.
// The lock is never extended, so match creation is cut off once LockTTL
// has passed since it was taken.
func (s *MatchmakingService) Drain(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchmakingService.Drain")
	defer span.End()

	release, acquired, err := s.store.TryLock(ctx, matchmakingLockKey, s.cfg.LockTTL)
	if err != nil {
		return 0, fmt.Errorf("%w: acquire drain lock: %v", ErrDependencyUnavailable, err)
	}
	if !acquired {
		return 0, nil
	}
	createCtx, cancel := context.WithTimeout(ctx, s.cfg.LockTTL)
	defer cancel()
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "release drain lock failed", "error", err)
		}
	}()

	queued, err := s.store.List(ctx, matchmakingQueueKey)
	if err != nil {
		return 0, fmt.Errorf("%w: list queue: %v", ErrDependencyUnavailable, err)
	}
	candidates := dedupe(queued)
	if len(candidates) == 0 {
		return 0, nil
	}

	players, err := s.playerRepo.GetByIDs(ctx, candidates)
	if err != nil {
		return 0, fmt.Errorf("resolve queued players: %w", err)
	}
	known := make(map[string]struct{}, len(players))
	for _, p := range players {
		known[p.ID] = struct{}{}
	}

	consumed := make(map[string]struct{})
	valid := make([]string, 0, len(candidates))
	for _, playerID := range candidates {
		if _, ok := known[playerID]; !ok {
			consumed[playerID] = struct{}{}
			continue
		}
		valid = append(valid, playerID)
	}

	workers := pool.NewWithResults[pairResult]().WithMaxGoroutines(s.cfg.CreateConcurrency)
	for i := 0; i+1 < len(valid); i += 2 {
		pair := [2]string{valid[i], valid[i+1]}
		workers.Go(func() pairResult {
			if err := createCtx.Err(); err != nil {
				return pairResult{players: pair, err: err}
			}
			m, err := s.creator.CreateMatch(createCtx, CreateMatchInput{PlayerOneID: pair[0], PlayerTwoID: pair[1]})
			return pairResult{players: pair, matchID: m.ID, err: err}
		})
	}

	var (
		made int
		errs []error
	)
	for _, result := range workers.Wait() {
		if result.err != nil {
			errs = append(errs, fmt.Errorf("create match for %s vs %s: %w", result.players[0], result.players[1], result.err))
			continue
		}
		made++
		consumed[result.players[0]] = struct{}{}
		consumed[result.players[1]] = struct{}{}
	}

	if len(consumed) > 0 {
		_, err := s.store.UpdateList(ctx, matchmakingQueueKey, s.cfg.QueueTTL, func(current []string) []string {
			next := make([]string, 0, len(current))
			for _, playerID := range current {
				if _, ok := consumed[playerID]; !ok {
					next = append(next, playerID)
				}
			}
			return next
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: persist queue remainder: %v", ErrDependencyUnavailable, err))
		}
	}

	span.SetAttributes(attribute.Int("matchmaking.matches_created", made))
	if made > 0 {
		s.logger.InfoContext(ctx, "matchmaking drained", "matches_created", made, "queued", len(candidates))
	}
	return made, errors.Join(errs...)
}

// DrainAndReschedule drains and queues another drain shortly after when a
// clean drain still leaves at least two players waiting.
func (s *MatchmakingService) DrainAndReschedule(ctx context.Context) (int, error) {
	made, err := s.Drain(ctx)
	if err != nil {
		return made, err
	}

	remaining, err := s.store.List(ctx, matchmakingQueueKey)
	if err != nil {
		return made, fmt.Errorf("%w: list queue: %v", ErrDependencyUnavailable, err)
	}
	if len(dedupe(remaining)) >= 2 {
		s.scheduleDrain(s.cfg.RedrainDelay)
	}
	return made, nil
}

// StartPeriodicDrain registers the background drain job.
func (s *MatchmakingService) StartPeriodicDrain() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Every("matchmaking-periodic-drain", s.cfg.DrainInterval, s.runDrain)
}

func (s *MatchmakingService) scheduleDrain(delay time.Duration) {
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.Schedule(matchmakingDrainKey, delay, s.runDrain); err != nil {
		s.logger.Error("schedule matchmaking drain failed", "error", err)
	}
}

func (s *MatchmakingService) runDrain(ctx context.Context) {
	if _, err := s.DrainAndReschedule(ctx); err != nil {
		s.logger.ErrorContext(ctx, "matchmaking drain failed", "error", err)
	}
}

func without(items []string, value string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item != value {
			out = append(out, item)
		}
	}
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
