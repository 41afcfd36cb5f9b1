package database

import (
	"context"
	"log/slog"

	"github.com/MShkut/personal-finance-tracker/internal/config"
	"github.com/MShkut/personal-finance-tracker/internal/repository"
	"github.com/MShkut/personal-finance-tracker/internal/repository/sqlite"
)

// Stores объединяет хранилища выбранного драйвера.
type Stores struct {
	Users   repository.UserStore
	Records repository.RecordStore
	Close   func()
}

// OpenStores подключается к базе из конфигурации и создает хранилища.
func OpenStores(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (Stores, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := OpenPostgres(ctx, cfg, logger)
		if err != nil {
			return Stores{}, err
		}
		return Stores{
			Users:   repository.NewUserRepository(pool),
			Records: repository.NewRecordRepository(pool),
			Close:   pool.Close,
		}, nil
	default:
		db, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return Stores{}, err
		}
		return Stores{
			Users:   sqlite.NewUserRepository(db),
			Records: sqlite.NewRecordRepository(db),
			Close:   func() { _ = db.Close() },
		}, nil
	}
}
