package location

import "context"

// Repository exposes maps as ordered, countable location collections.
type Repository interface {
	DefaultMapID(ctx context.Context) (string, bool, error)
	GetMap(ctx context.Context, mapID string) (Map, bool, error)
	Count(ctx context.Context, mapID string) (int, error)
	// At returns the location at a zero-based offset in position order.
	At(ctx context.Context, mapID string, offset int) (Location, bool, error)
}
