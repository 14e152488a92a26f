package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/geoduel/internal/domain/location"
)

type LocationRepository struct {
	mu        sync.RWMutex
	maps      map[string]location.Map
	locations map[string][]location.Location
}

func NewLocationRepository(maps []location.Map, locations []location.Location) *LocationRepository {
	r := &LocationRepository{
		maps:      make(map[string]location.Map, len(maps)),
		locations: make(map[string][]location.Location),
	}
	for _, m := range maps {
		r.maps[m.ID] = m
	}
	for _, loc := range locations {
		r.locations[loc.MapID] = append(r.locations[loc.MapID], loc)
	}
	for mapID := range r.locations {
		items := r.locations[mapID]
		sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	}
	return r
}

func (r *LocationRepository) DefaultMapID(_ context.Context) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.maps {
		if m.IsDefault {
			return m.ID, true, nil
		}
	}
	return "", false, nil
}

func (r *LocationRepository) GetMap(_ context.Context, mapID string) (location.Map, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.maps[mapID]
	return m, ok, nil
}

func (r *LocationRepository) Count(_ context.Context, mapID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.locations[mapID]), nil
}

func (r *LocationRepository) At(_ context.Context, mapID string, offset int) (location.Location, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.locations[mapID]
	if offset < 0 || offset >= len(items) {
		return location.Location{}, false, nil
	}
	return items[offset], true, nil
}
