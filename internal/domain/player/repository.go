package player

import (
	"context"
	"time"
)

// Repository describes player persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, p Player) error
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	GetByIDs(ctx context.Context, playerIDs []string) ([]Player, error)
	UpdateRating(ctx context.Context, playerID string, rating int, updatedAt time.Time) error
	// RecordResult increments games played and the matching result counter.
	RecordResult(ctx context.Context, playerID string, result Result, updatedAt time.Time) error
}
