package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var ErrDirtyMigration = errors.New("database schema is dirty")

// MigrationResult reports the schema version after RunMigrations.
type MigrationResult struct {
	Version uint
	Applied bool
}

// RunMigrations applies every pending up migration under migrationsPath.
// A schema left dirty by an earlier failed run is reported, not forced.
func RunMigrations(databaseURL, migrationsPath string) (MigrationResult, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return MigrationResult{}, fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("create migration instance: %w", err)
	}

	before, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationResult{}, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return MigrationResult{}, fmt.Errorf("%w at version %d", ErrDirtyMigration, before)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return MigrationResult{}, fmt.Errorf("run migrations: %w", err)
	}

	after, _, err := migrator.Version()
	if err != nil {
		return MigrationResult{}, fmt.Errorf("read schema version: %w", err)
	}

	return MigrationResult{Version: after, Applied: after != before}, nil
}
