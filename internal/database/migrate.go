package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/MShkut/personal-finance-tracker/internal/config"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate применяет встроенные миграции для выбранного драйвера.
// Для миграций открывается отдельное подключение.
func Migrate(cfg config.DatabaseConfig) error {
	var (
		db     *sql.DB
		driver database.Driver
		err    error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = sql.Open("pgx/v5", cfg.DSN())
		if err != nil {
			return fmt.Errorf("open migration database: %w", err)
		}
		defer db.Close()

		driver, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	case config.DriverSQLite:
		db, err = sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open migration database: %w", err)
		}
		defer db.Close()

		driver, err = sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return fmt.Errorf("create %s migration driver: %w", cfg.Driver, err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+cfg.Driver)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, cfg.Driver, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
