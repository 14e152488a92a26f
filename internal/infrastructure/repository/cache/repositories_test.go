package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/location"
	"github.com/riskibarqy/geoduel/internal/domain/player"
	"github.com/riskibarqy/geoduel/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/geoduel/internal/platform/cache"
)

type countingLocations struct {
	location.Repository
	counts int
	at     int
}

func (c *countingLocations) Count(ctx context.Context, mapID string) (int, error) {
	c.counts++
	return c.Repository.Count(ctx, mapID)
}

func (c *countingLocations) At(ctx context.Context, mapID string, offset int) (location.Location, bool, error) {
	c.at++
	return c.Repository.At(ctx, mapID, offset)
}

func TestLocationRepository_CachesLookups(t *testing.T) {
	next := &countingLocations{Repository: memory.NewLocationRepository(memory.SeedMaps(), memory.SeedLocations())}
	repo := NewLocationRepository(next, basecache.NewStore(time.Minute))
	ctx := t.Context()

	for range 3 {
		count, err := repo.Count(ctx, memory.MapIDWorld)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 6 {
			t.Fatalf("expected 6 world locations, got %d", count)
		}
		loc, exists, err := repo.At(ctx, memory.MapIDWorld, 1)
		if err != nil || !exists {
			t.Fatalf("at: exists=%v err=%v", exists, err)
		}
		if loc.Position != 1 {
			t.Fatalf("expected position 1, got %d", loc.Position)
		}
	}

	if next.counts != 1 || next.at != 1 {
		t.Fatalf("expected one load each, got count=%d at=%d", next.counts, next.at)
	}

	_, exists, err := repo.At(ctx, memory.MapIDWorld, 99)
	if err != nil || exists {
		t.Fatalf("expected missing offset, got exists=%v err=%v", exists, err)
	}
}

func TestPlayerRepository_InvalidatesOnWrite(t *testing.T) {
	next := memory.NewPlayerRepository([]player.Player{{ID: "p1", DisplayName: "Ada", Rating: 1000}})
	repo := NewPlayerRepository(next, basecache.NewStore(time.Minute))
	ctx := t.Context()

	before, _, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if before.Rating != 1000 {
		t.Fatalf("expected rating 1000, got %d", before.Rating)
	}

	if err := repo.UpdateRating(ctx, "p1", 1016, time.Now()); err != nil {
		t.Fatalf("update rating: %v", err)
	}
	after, _, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("get player after update: %v", err)
	}
	if after.Rating != 1016 {
		t.Fatalf("expected fresh rating 1016, got %d", after.Rating)
	}
}
