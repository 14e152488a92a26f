package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/match"
	"github.com/riskibarqy/geoduel/internal/domain/player"
	"github.com/riskibarqy/geoduel/internal/domain/rating"
	"github.com/riskibarqy/geoduel/internal/platform/id"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type RatingService struct {
	playerRepo  player.Repository
	matchRepo   match.Repository
	historyRepo rating.Repository
	ids         id.Generator
	cfg         rating.Config
	logger      *logging.Logger
	now         func() time.Time
}

func NewRatingService(
	playerRepo player.Repository,
	matchRepo match.Repository,
	historyRepo rating.Repository,
	ids id.Generator,
	cfg rating.Config,
	logger *logging.Logger,
) *RatingService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == (rating.Config{}) {
		cfg = rating.DefaultConfig()
	}

	return &RatingService{
		playerRepo:  playerRepo,
		matchRepo:   matchRepo,
		historyRepo: historyRepo,
		ids:         ids,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// ApplyMatchResult rates a completed match: one history row per player,
// then both ratings, then the signed deltas onto the match.
func (s *RatingService) ApplyMatchResult(ctx context.Context, m match.Match) ([2]rating.Change, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.ApplyMatchResult")
	defer span.End()

	var changes [2]rating.Change
	players, err := s.playerRepo.GetByIDs(ctx, []string{m.PlayerOneID, m.PlayerTwoID})
	if err != nil {
		return changes, fmt.Errorf("get players: %w", err)
	}
	byID := make(map[string]player.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	one, okOne := byID[m.PlayerOneID]
	two, okTwo := byID[m.PlayerTwoID]
	if !okOne || !okTwo {
		return changes, fmt.Errorf("%w: match %s players", ErrNotFound, m.ID)
	}

	outcome, margin := s.outcome(m)
	changes[match.SlotOne], changes[match.SlotTwo] = s.cfg.Compute(
		rating.Participant{Rating: one.Rating, GamesPlayed: one.GamesPlayed},
		rating.Participant{Rating: two.Rating, GamesPlayed: two.GamesPlayed},
		outcome,
		margin,
	)

	now := s.now().UTC()
	entries := make([]rating.History, 0, 2)
	opponents := [2]int{two.Rating, one.Rating}
	for slot, change := range changes {
		historyID, err := s.ids.NewID()
		if err != nil {
			return changes, fmt.Errorf("generate history id: %w", err)
		}
		entries = append(entries, rating.History{
			ID:             historyID,
			PlayerID:       m.PlayerID(match.Slot(slot)),
			MatchID:        m.ID,
			RatingBefore:   change.Before,
			RatingAfter:    change.After,
			Delta:          change.Delta,
			OpponentRating: opponents[slot],
			CreatedAt:      now,
		})
	}
	if err := s.historyRepo.Append(ctx, entries...); err != nil {
		return changes, fmt.Errorf("append rating history: %w", err)
	}

	for slot, change := range changes {
		if err := s.playerRepo.UpdateRating(ctx, m.PlayerID(match.Slot(slot)), change.After, now); err != nil {
			return changes, fmt.Errorf("update rating: %w", err)
		}
	}
	if err := s.matchRepo.SaveRatingChanges(ctx, m.ID, [2]int{changes[0].Delta, changes[1].Delta}); err != nil {
		return changes, fmt.Errorf("save rating changes: %w", err)
	}

	s.logger.InfoContext(ctx, "match rated",
		"match_id", m.ID,
		"player_one_delta", changes[0].Delta,
		"player_two_delta", changes[1].Delta,
	)
	return changes, nil
}

// outcome is player one's actual score and the shared margin multiplier.
func (s *RatingService) outcome(m match.Match) (rating.Outcome, float64) {
	if m.WinnerID == nil {
		return rating.OutcomeDraw, 1
	}

	winner := match.SlotOne
	outcome := rating.OutcomeWin
	if *m.WinnerID == m.PlayerTwoID {
		winner = match.SlotTwo
		outcome = rating.OutcomeLoss
	}

	if m.Format.UsesHealth() {
		return outcome, rating.HealthMargin(m.Health[winner], m.MaxHealth)
	}
	return outcome, rating.RoundMargin(m.RoundWins[winner], m.RoundWins[winner.Other()], m.Format.WinsNeeded())
}

func (s *RatingService) History(ctx context.Context, playerID string, limit int) ([]rating.History, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.History")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	items, err := s.historyRepo.ListByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list rating history: %w", err)
	}
	return items, nil
}
