package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/MShkut/personal-finance-tracker/internal/models"
)

// UserStore хранит учетные записи пользователей.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string, name *string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Count(ctx context.Context) (int, error)
}

// RecordStore хранит непрозрачные записи пользователя по ключу.
// Put всегда полностью перезаписывает значение, Get возвращает ErrNotFound при отсутствии ключа.
type RecordStore interface {
	Get(ctx context.Context, userID uuid.UUID, key string) ([]byte, error)
	Put(ctx context.Context, userID uuid.UUID, key string, payload []byte) error
	Delete(ctx context.Context, userID uuid.UUID, key string) error
	CountKey(ctx context.Context, key string) (int, error)
}
