package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/geoduel/internal/domain/location"
	qb "github.com/riskibarqy/geoduel/internal/platform/querybuilder"
)

type mapTableModel struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	IsDefault bool   `db:"is_default"`
}

type locationTableModel struct {
	MapID    string  `db:"map_id"`
	Position int     `db:"position"`
	Lat      float64 `db:"lat"`
	Lng      float64 `db:"lng"`
	Heading  float64 `db:"heading"`
}

type LocationRepository struct {
	db *sqlx.DB
}

func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) DefaultMapID(ctx context.Context) (string, bool, error) {
	query, args, err := qb.Select("id").From("maps").
		Where(qb.Expr("is_default = ?", true)).
		Limit(1).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build default map query: %w", err)
	}

	var mapID string
	if err := r.db.GetContext(ctx, &mapID, query, args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get default map: %w", err)
	}
	return mapID, true, nil
}

func (r *LocationRepository) GetMap(ctx context.Context, mapID string) (location.Map, bool, error) {
	query, args, err := qb.Select("id", "name", "is_default").From("maps").
		Where(qb.Eq("id", mapID)).
		ToSQL()
	if err != nil {
		return location.Map{}, false, fmt.Errorf("build get map query: %w", err)
	}

	var row mapTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return location.Map{}, false, nil
		}
		return location.Map{}, false, fmt.Errorf("get map: %w", err)
	}
	return location.Map{ID: row.ID, Name: row.Name, IsDefault: row.IsDefault}, true, nil
}

func (r *LocationRepository) Count(ctx context.Context, mapID string) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From("locations").
		Where(qb.Eq("map_id", mapID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count locations query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count locations: %w", err)
	}
	return count, nil
}

func (r *LocationRepository) At(ctx context.Context, mapID string, offset int) (location.Location, bool, error) {
	if offset < 0 {
		return location.Location{}, false, nil
	}
	query, args, err := qb.Select("map_id", "position", "lat", "lng", "heading").From("locations").
		Where(qb.Eq("map_id", mapID)).
		OrderBy("position").
		Limit(1).
		Offset(offset).
		ToSQL()
	if err != nil {
		return location.Location{}, false, fmt.Errorf("build location at offset query: %w", err)
	}

	var row locationTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return location.Location{}, false, nil
		}
		return location.Location{}, false, fmt.Errorf("get location at offset: %w", err)
	}
	return location.Location{
		MapID:    row.MapID,
		Position: row.Position,
		Lat:      row.Lat,
		Lng:      row.Lng,
		Heading:  row.Heading,
	}, true, nil
}
