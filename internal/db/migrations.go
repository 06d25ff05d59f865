package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Durations stay TEXT in HH:MM:SS form; the upstream exporters write them that way.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS bases (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS vehicle_groups (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		group_id BIGINT REFERENCES vehicle_groups (id)
	);`,
	`CREATE TABLE IF NOT EXISTS engine_usage (
		id BIGSERIAL PRIMARY KEY,
		usage_date DATE NOT NULL,
		vehicle_id BIGINT NOT NULL REFERENCES vehicles (id),
		group_id BIGINT REFERENCES vehicle_groups (id),
		total_duration TEXT,
		moving_duration TEXT,
		engine_idle_duration TEXT,
		distance_km DOUBLE PRECISION,
		max_speed_kmh DOUBLE PRECISION,
		usage_percent DOUBLE PRECISION,
		total_consumption_liters DOUBLE PRECISION,
		consumption_per_100km DOUBLE PRECISION,
		consumption_per_hour DOUBLE PRECISION,
		UNIQUE (usage_date, vehicle_id)
	);`,
	`CREATE TABLE IF NOT EXISTS vehicle_exceptions (
		id BIGSERIAL PRIMARY KEY,
		exception_date DATE NOT NULL,
		vehicle_id BIGINT NOT NULL REFERENCES vehicles (id),
		speeding_count BIGINT NOT NULL DEFAULT 0,
		harsh_braking_count BIGINT NOT NULL DEFAULT 0,
		harsh_acceleration_count BIGINT NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS base_transits (
		id BIGSERIAL PRIMARY KEY,
		transit_date DATE NOT NULL,
		vehicle_id BIGINT NOT NULL REFERENCES vehicles (id),
		departure_base_id BIGINT NOT NULL REFERENCES bases (id),
		arrival_base_id BIGINT REFERENCES bases (id),
		departure_at TIMESTAMPTZ,
		arrival_at TIMESTAMPTZ,
		base_duration TEXT,
		transit_duration TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_group ON vehicles (group_id);`,
	`CREATE INDEX IF NOT EXISTS idx_engine_usage_date_vehicle ON engine_usage (usage_date DESC, vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_engine_usage_group ON engine_usage (group_id, usage_date);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_exceptions_date_vehicle ON vehicle_exceptions (exception_date DESC, vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_base_transits_date_vehicle ON base_transits (transit_date DESC, vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_base_transits_departure_base ON base_transits (departure_base_id, transit_date);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_vehicle_groups_active') THEN
			CREATE INDEX idx_vehicle_groups_active ON vehicle_groups (name) WHERE active;
		END IF;
	END
	$$;`,
}

// Migrations returns the idempotent schema statements in execution order.
func Migrations() []string {
	out := make([]string, len(migrationStatements))
	copy(out, migrationStatements)
	return out
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
