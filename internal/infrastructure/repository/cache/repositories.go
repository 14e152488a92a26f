package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/geoduel/internal/domain/location"
	"github.com/riskibarqy/geoduel/internal/domain/player"
	basecache "github.com/riskibarqy/geoduel/internal/platform/cache"
)

// LocationRepository caches map lookups. Maps are read on every match
// creation and change only through migrations.
type LocationRepository struct {
	next  location.Repository
	cache *basecache.Store
}

func NewLocationRepository(next location.Repository, cache *basecache.Store) *LocationRepository {
	return &LocationRepository{next: next, cache: cache}
}

func (r *LocationRepository) DefaultMapID(ctx context.Context) (string, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "map:default", func(ctx context.Context) (any, error) {
		mapID, exists, err := r.next.DefaultMapID(ctx)
		if err != nil {
			return nil, err
		}
		return cachedDefaultMap{mapID: mapID, exists: exists}, nil
	})
	if err != nil {
		return "", false, err
	}

	cached, _ := v.(cachedDefaultMap)
	return cached.mapID, cached.exists, nil
}

type cachedDefaultMap struct {
	mapID  string
	exists bool
}

func (r *LocationRepository) GetMap(ctx context.Context, mapID string) (location.Map, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "map:id:"+mapID, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetMap(ctx, mapID)
		if err != nil {
			return nil, err
		}
		return cachedMapByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return location.Map{}, false, err
	}

	cached, _ := v.(cachedMapByID)
	return cached.value, cached.exists, nil
}

type cachedMapByID struct {
	value  location.Map
	exists bool
}

func (r *LocationRepository) Count(ctx context.Context, mapID string) (int, error) {
	v, err := r.cache.GetOrLoad(ctx, "map:count:"+mapID, func(ctx context.Context) (any, error) {
		return r.next.Count(ctx, mapID)
	})
	if err != nil {
		return 0, err
	}

	count, _ := v.(int)
	return count, nil
}

func (r *LocationRepository) At(ctx context.Context, mapID string, offset int) (location.Location, bool, error) {
	key := "map:location:" + mapID + ":" + strconv.Itoa(offset)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.At(ctx, mapID, offset)
		if err != nil {
			return nil, err
		}
		return cachedLocationAt{value: item, exists: exists}, nil
	})
	if err != nil {
		return location.Location{}, false, err
	}

	cached, _ := v.(cachedLocationAt)
	return cached.value, cached.exists, nil
}

type cachedLocationAt struct {
	value  location.Location
	exists bool
}

// PlayerRepository caches single player reads and drops the entry on
// every write to that player.
type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) error {
	if err := r.next.Create(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx, p.ID)
	return nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, playerKey(playerID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, playerID)
		if err != nil {
			return nil, err
		}
		return cachedPlayerByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return player.Player{}, false, err
	}

	cached, _ := v.(cachedPlayerByID)
	return cached.value, cached.exists, nil
}

type cachedPlayerByID struct {
	value  player.Player
	exists bool
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	return r.next.GetByIDs(ctx, playerIDs)
}

func (r *PlayerRepository) UpdateRating(ctx context.Context, playerID string, rating int, updatedAt time.Time) error {
	defer r.invalidate(ctx, playerID)
	return r.next.UpdateRating(ctx, playerID, rating, updatedAt)
}

func (r *PlayerRepository) RecordResult(ctx context.Context, playerID string, result player.Result, updatedAt time.Time) error {
	defer r.invalidate(ctx, playerID)
	return r.next.RecordResult(ctx, playerID, result, updatedAt)
}

func (r *PlayerRepository) invalidate(ctx context.Context, playerID string) {
	r.cache.Delete(ctx, playerKey(playerID))
}

func playerKey(playerID string) string {
	return "player:id:" + playerID
}
