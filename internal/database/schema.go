package database

import (
	"context"
	"database/sql"
)

// schemaStatements creates the three tables the service owns.  Every
// statement is idempotent so EnsureSchema can run at each startup.
//
// The unique key on occupancy.vehicle_id is the storage-level backstop
// for the one-entry-per-vehicle invariant; the application still
// checks and surfaces violations instead of relying on it silently.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS parking_events (
        id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        vehicle_id VARCHAR(32)  NOT NULL,
        barrier_id VARCHAR(16)  NOT NULL,
        entry_time DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
        exit_time  DATETIME     NULL,
        PRIMARY KEY (id),
        KEY idx_parking_events_vehicle (vehicle_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS occupancy (
        id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        vehicle_id VARCHAR(32)  NOT NULL,
        barrier_id VARCHAR(16)  NOT NULL,
        created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        UNIQUE KEY uq_occupancy_vehicle (vehicle_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS payments (
        id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        vehicle_id VARCHAR(32)  NOT NULL,
        created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
        paid_at    DATETIME     NULL,
        PRIMARY KEY (id),
        KEY idx_payments_vehicle (vehicle_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the service's tables when they do not exist
// yet.  It runs once at startup, before the first request is served.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
