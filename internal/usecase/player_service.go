package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/player"
	"github.com/riskibarqy/geoduel/internal/platform/id"
)

type PlayerService struct {
	playerRepo player.Repository
	ids        id.Generator
	now        func() time.Time
}

func NewPlayerService(playerRepo player.Repository, ids id.Generator) *PlayerService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &PlayerService{
		playerRepo: playerRepo,
		ids:        ids,
		now:        time.Now,
	}
}

func (s *PlayerService) Register(ctx context.Context, displayName string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Register")
	defer span.End()

	playerID, err := s.ids.NewID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}
	p, err := player.New(playerID, displayName, s.now().UTC())
	if err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.playerRepo.Create(ctx, p); err != nil {
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}
	return p, nil
}

func (s *PlayerService) Get(ctx context.Context, playerID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Get")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return player.Player{}, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}
	p, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	return p, nil
}
