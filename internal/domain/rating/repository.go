package rating

import "context"

// Repository describes rating history persistence needs from use cases.
type Repository interface {
	Append(ctx context.Context, entries ...History) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]History, error)
}
