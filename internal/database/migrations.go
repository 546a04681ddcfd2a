package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents one schema migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered schema history. Migrations are embedded rather
// than loaded from disk so a deployed binary is self-contained.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_journeys",
		SQL: `
			CREATE TABLE IF NOT EXISTS journeys (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL,
				start_time INTEGER NOT NULL,
				end_time INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL DEFAULT 'active',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_journeys_owner ON journeys(owner_id);
		`,
	},
	{
		Version: 2,
		Name:    "create_telemetry_samples",
		SQL: `
			CREATE TABLE IF NOT EXISTS telemetry_samples (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				journey_id TEXT NOT NULL,
				timestamp INTEGER NOT NULL,
				latitude REAL NOT NULL,
				longitude REAL NOT NULL,
				accuracy REAL NOT NULL DEFAULT 0,
				speed REAL,
				heading REAL,
				accel_x REAL, accel_y REAL, accel_z REAL,
				gyro_x REAL, gyro_y REAL, gyro_z REAL,
				FOREIGN KEY (journey_id) REFERENCES journeys(id)
			);
			CREATE INDEX IF NOT EXISTS idx_samples_journey_time
				ON telemetry_samples(journey_id, timestamp);
		`,
	},
	{
		Version: 3,
		Name:    "create_journey_analyses",
		SQL: `
			CREATE TABLE IF NOT EXISTS journey_analyses (
				id TEXT PRIMARY KEY,
				journey_id TEXT NOT NULL UNIQUE,
				owner_id TEXT NOT NULL,
				accessibility_score INTEGER NOT NULL,
				segment_count INTEGER NOT NULL,
				anomaly_count INTEGER NOT NULL,
				algo_version TEXT NOT NULL,
				result_json TEXT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (journey_id) REFERENCES journeys(id)
			);
			CREATE INDEX IF NOT EXISTS idx_analyses_owner ON journey_analyses(owner_id);
		`,
	},
	{
		Version: 4,
		Name:    "create_transit_tables",
		SQL: `
			CREATE TABLE IF NOT EXISTS transit_routes (
				route_id TEXT PRIMARY KEY,
				short_name TEXT NOT NULL DEFAULT '',
				long_name TEXT NOT NULL DEFAULT '',
				route_type INTEGER NOT NULL,
				agency_id TEXT
			);
			CREATE TABLE IF NOT EXISTS transit_stops (
				stop_id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				latitude REAL NOT NULL,
				longitude REAL NOT NULL,
				wheelchair_boarding INTEGER NOT NULL DEFAULT 0
			);
			CREATE TABLE IF NOT EXISTS vehicle_positions (
				vehicle_id TEXT NOT NULL,
				trip_id TEXT NOT NULL DEFAULT '',
				route_id TEXT NOT NULL DEFAULT '',
				stop_id TEXT,
				latitude REAL NOT NULL,
				longitude REAL NOT NULL,
				timestamp INTEGER NOT NULL,
				PRIMARY KEY (vehicle_id, timestamp)
			);
			CREATE INDEX IF NOT EXISTS idx_vehicle_positions_time ON vehicle_positions(timestamp);
			CREATE INDEX IF NOT EXISTS idx_vehicle_positions_location
				ON vehicle_positions(latitude, longitude);
			CREATE INDEX IF NOT EXISTS idx_stops_location
				ON transit_stops(latitude, longitude);
		`,
	},
}

// Migrate applies all pending migrations in version order
func Migrate(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		log.Printf("[Database] Applied migration %d: %s", m.Version, m.Name)
	}

	return nil
}

func initMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		return err
	}
	return tx.Commit()
}
