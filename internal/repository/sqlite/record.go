package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MShkut/personal-finance-tracker/internal/repository"
)

type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository создает key-value хранилище записей в SQLite.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Get возвращает сохраненное значение ключа.
func (r *RecordRepository) Get(ctx context.Context, userID uuid.UUID, key string) ([]byte, error) {
	var payload string

	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM user_records WHERE user_id = ? AND record_key = ?`,
		userID.String(), key,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return []byte(payload), nil
}

// Put полностью перезаписывает значение ключа.
func (r *RecordRepository) Put(ctx context.Context, userID uuid.UUID, key string, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_records (user_id, record_key, payload, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, record_key)
		 DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		userID.String(), key, string(payload), time.Now().UTC().Format(timeLayout),
	)
	return err
}

// Delete удаляет ключ.
func (r *RecordRepository) Delete(ctx context.Context, userID uuid.UUID, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_records WHERE user_id = ? AND record_key = ?`,
		userID.String(), key,
	)
	return err
}

// CountKey возвращает число пользователей, у которых сохранен ключ.
func (r *RecordRepository) CountKey(ctx context.Context, key string) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_records WHERE record_key = ?`, key).Scan(&total)
	return total, err
}
