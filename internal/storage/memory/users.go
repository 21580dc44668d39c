// memory — потокобезопасное хранилище пользователей в памяти процесса.
// Подходит для локального запуска и тестов; данные теряются при рестарте.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-auth/internal/models"
	"github.com/pribylovaa/school-auth/internal/storage"
)

type Storage struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*models.User
	byUsername map[string]uuid.UUID
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		byID:       make(map[uuid.UUID]*models.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

func usernameKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// SaveUser создает нового пользователя.
func (s *Storage) SaveUser(_ context.Context, user *models.User) error {
	const op = "storage.memory.SaveUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	key := usernameKey(user.Username)
	if _, ok := s.byUsername[key]; ok {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}
	if _, ok := s.byID[user.ID]; ok {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	cp := *user
	s.byID[user.ID] = &cp
	s.byUsername[key] = user.ID

	return nil
}

// UserByUsername находит пользователя по имени входа.
func (s *Storage) UserByUsername(_ context.Context, username string) (*models.User, error) {
	const op = "storage.memory.UserByUsername"

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[usernameKey(username)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	cp := *s.byID[id]
	return &cp, nil
}

// UserByID находит пользователя по ID.
func (s *Storage) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.memory.UserByID"

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	cp := *u
	return &cp, nil
}

// ListUsers возвращает пользователей в порядке имени входа.
func (s *Storage) ListUsers(_ context.Context, role models.Role) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.byID))
	for _, u := range s.byID {
		if role != "" && u.Role != role {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		return usernameKey(out[i].Username) < usernameKey(out[j].Username)
	})

	return out, nil
}

func (s *Storage) Close() {}

// Проверка на соответствие интерфейсу UserStorage.
var _ storage.UserStorage = (*Storage)(nil)
