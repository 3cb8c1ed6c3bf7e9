package horse_racing

import (
	"context"
	"fmt"

	"hrc-derby/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func createHorseTypesTable(ctx context.Context, db *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS horse_types (
			type_name     TEXT PRIMARY KEY,
			position      INTEGER NOT NULL DEFAULT 0,
			speed         DOUBLE PRECISION,
			speed_pattern DOUBLE PRECISION[],
			speed_range   DOUBLE PRECISION[],
			pause_chance  DOUBLE PRECISION
		)`
	if _, err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create horse_types table: %w", err)
	}
	return nil
}

// LoadCatalogFromDB reads the horse_types table in catalog order.
func LoadCatalogFromDB(ctx context.Context, db *pgxpool.Pool) ([]HorseType, error) {
	rows, err := db.Query(ctx, `
		SELECT type_name, speed, speed_pattern, speed_range, pause_chance
		FROM horse_types ORDER BY position, type_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query horse types: %w", err)
	}
	descs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Descriptor, error) {
		var (
			d            Descriptor
			speed, pause *float64
		)
		if err := row.Scan(&d.TypeName, &speed, &d.SpeedPattern, &d.SpeedRange, &pause); err != nil {
			return d, err
		}
		if speed != nil {
			d.Speed = *speed
		}
		if pause != nil {
			d.PauseChance = *pause
		}
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan horse types: %w", err)
	}
	return BuildTypes(descs), nil
}

// SeedCatalog writes types into horse_types in one batch.
func SeedCatalog(ctx context.Context, db *pgxpool.Pool, types []HorseType) error {
	batch := &pgx.Batch{}
	for i, t := range types {
		d := DescriptorFor(t)
		batch.Queue(`
			INSERT INTO horse_types (type_name, position, speed, speed_pattern, speed_range, pause_chance)
			VALUES ($1, $2, NULLIF($3::DOUBLE PRECISION, 0), $4, $5, NULLIF($6::DOUBLE PRECISION, 0))
			ON CONFLICT (type_name) DO NOTHING`,
			d.TypeName, i, d.Speed, d.SpeedPattern, d.SpeedRange, d.PauseChance)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to seed horse types: %w", err)
	}
	return nil
}

// LoadCatalog fills catalog from the database when db is set, seeding the
// table from path the first time; otherwise it reads path directly. Failures
// are logged and leave the catalog empty.
func LoadCatalog(ctx context.Context, catalog *Catalog, db *pgxpool.Pool, path string) {
	types, err := loadCatalogTypes(ctx, db, path)
	if err != nil {
		utils.BotLogf("CATALOG", "Error loading horse types: %v", err)
		return
	}
	catalog.Set(types)
	utils.BotLogf("CATALOG", "Loaded %d horse types", len(types))
}

func loadCatalogTypes(ctx context.Context, db *pgxpool.Pool, path string) ([]HorseType, error) {
	if db == nil {
		return LoadCatalogFile(path)
	}
	if err := createHorseTypesTable(ctx, db); err != nil {
		return nil, err
	}
	types, err := LoadCatalogFromDB(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(types) > 0 {
		return types, nil
	}
	types, err = LoadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	if err := SeedCatalog(ctx, db, types); err != nil {
		utils.BotLogf("CATALOG", "Seeding horse_types failed, using file catalog: %v", err)
	}
	return types, nil
}
