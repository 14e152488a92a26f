package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/geoduel/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the built-in maps when the database has no locations.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM locations`); err != nil {
		return fmt.Errorf("count locations for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, m := range memory.SeedMaps() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO maps (id, name, is_default)
VALUES (:id, :name, :is_default)
ON CONFLICT (id) DO NOTHING`, mapTableModel{ID: m.ID, Name: m.Name, IsDefault: m.IsDefault})
		if err != nil {
			return fmt.Errorf("bind seed map %s query: %w", m.ID, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...); err != nil {
			return fmt.Errorf("seed map %s: %w", m.ID, err)
		}
	}

	for _, l := range memory.SeedLocations() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO locations (map_id, position, lat, lng, heading)
VALUES (:map_id, :position, :lat, :lng, :heading)
ON CONFLICT (map_id, position) DO NOTHING`, locationTableModel{
			MapID:    l.MapID,
			Position: l.Position,
			Lat:      l.Lat,
			Lng:      l.Lng,
			Heading:  l.Heading,
		})
		if err != nil {
			return fmt.Errorf("bind seed location %s/%d query: %w", l.MapID, l.Position, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...); err != nil {
			return fmt.Errorf("seed location %s/%d: %w", l.MapID, l.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
