package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-auth/internal/models"
)

//go:generate mockgen -destination=../../mocks/mock_storage.go -package=mocks github.com/pribylovaa/school-auth/internal/storage UserStorage

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (username/id).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
// Имена пользователей сравниваются без учёта регистра.
type UserStorage interface {
	// SaveUser создает нового пользователя.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByUsername находит пользователя по имени входа.
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// ListUsers возвращает пользователей, опционально отфильтрованных по роли
	// (пустая роль — без фильтра), в порядке имени входа.
	ListUsers(ctx context.Context, role models.Role) ([]*models.User, error)
	// Close освобождает ресурсы хранилища.
	Close()
}
