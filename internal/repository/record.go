package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RecordRepository struct {
	db *pgxpool.Pool
}

// NewRecordRepository создает key-value хранилище записей в PostgreSQL.
func NewRecordRepository(db *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{db: db}
}

// Get возвращает сохраненное значение ключа.
func (r *RecordRepository) Get(ctx context.Context, userID uuid.UUID, key string) ([]byte, error) {
	var payload string

	err := r.db.QueryRow(ctx,
		`SELECT payload::text
		 FROM user_records
		 WHERE user_id = $1 AND record_key = $2`,
		userID, key,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return []byte(payload), nil
}

// Put полностью перезаписывает значение ключа.
func (r *RecordRepository) Put(ctx context.Context, userID uuid.UUID, key string, payload []byte) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_records (user_id, record_key, payload)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (user_id, record_key)
		 DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`,
		userID, key, string(payload),
	)
	return err
}

// Delete удаляет ключ. Отсутствие ключа ошибкой не считается.
func (r *RecordRepository) Delete(ctx context.Context, userID uuid.UUID, key string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM user_records WHERE user_id = $1 AND record_key = $2`,
		userID, key,
	)
	return err
}

// CountKey возвращает число пользователей, у которых сохранен ключ.
func (r *RecordRepository) CountKey(ctx context.Context, key string) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_records WHERE record_key = $1`, key).Scan(&total)
	return total, err
}
