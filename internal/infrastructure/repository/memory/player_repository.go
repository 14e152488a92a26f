package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/player"
)

type PlayerRepository struct {
	mu    sync.RWMutex
	items map[string]player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	items := make(map[string]player.Player, len(players))
	for _, p := range players {
		items[p.ID] = p
	}
	return &PlayerRepository{items: items}
}

func (r *PlayerRepository) Create(_ context.Context, p player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[p.ID]; ok {
		return fmt.Errorf("player %s already exists", p.ID)
	}
	r.items[p.ID] = p
	return nil
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[playerID]
	return p, ok, nil
}

func (r *PlayerRepository) GetByIDs(_ context.Context, playerIDs []string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		p, ok := r.items[id]
		if !ok {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}

func (r *PlayerRepository) UpdateRating(_ context.Context, playerID string, rating int, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[playerID]
	if !ok {
		return fmt.Errorf("player %s not found", playerID)
	}
	p.Rating = rating
	p.UpdatedAt = updatedAt
	r.items[playerID] = p
	return nil
}

func (r *PlayerRepository) RecordResult(_ context.Context, playerID string, result player.Result, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[playerID]
	if !ok {
		return fmt.Errorf("player %s not found", playerID)
	}
	p = p.Record(result)
	p.UpdatedAt = updatedAt
	r.items[playerID] = p
	return nil
}
