package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/school-auth/internal/models"
	"github.com/pribylovaa/school-auth/internal/storage"
)

const minPasswordLen = 8

var usernameRe = regexp.MustCompile(`^[a-z0-9._-]{3,64}$`)

// RegisterUser создаёт учётную запись. Пароль сохраняется только bcrypt-хэшем.
// Пустой displayName заменяется именем входа.
func (s *Service) RegisterUser(ctx context.Context, username, displayName, password string, role models.Role) (*models.User, error) {
	const op = "service.users.RegisterUser"

	norm, err := validateUsername(username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !role.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRole)
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = norm
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     norm,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// EnsureUser создаёт пользователя, если имени входа ещё нет.
// created=false означает, что пользователь уже существовал.
func (s *Service) EnsureUser(ctx context.Context, username, displayName, password string, role models.Role) (bool, error) {
	const op = "service.users.EnsureUser"

	_, err := s.RegisterUser(ctx, username, displayName, password, role)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, ErrUsernameTaken) {
		return false, nil
	}

	return false, fmt.Errorf("%s: %w", op, err)
}

// UserByID возвращает пользователя по идентификатору.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "service.users.UserByID"

	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// ListUsers возвращает пользователей; пустая роль — без фильтра.
func (s *Service) ListUsers(ctx context.Context, role models.Role) ([]*models.User, error) {
	const op = "service.users.ListUsers"

	if role != "" && !role.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRole)
	}

	users, err := s.users.ListUsers(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.users.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateUsername приводит имя к нижнему регистру и проверяет алфавит и длину.
func validateUsername(raw string) (string, error) {
	username := strings.ToLower(strings.TrimSpace(raw))
	if !usernameRe.MatchString(username) {
		return "", ErrInvalidUsername
	}

	return username, nil
}

// validatePassword проверяет минимальные требования к паролю.
// bcrypt не принимает пароли длиннее 72 байт.
func validatePassword(pw string) error {
	if len(pw) == 0 {
		return ErrEmptyPassword
	}

	if len([]rune(pw)) < minPasswordLen || len(pw) > 72 {
		return ErrWeakPassword
	}

	return nil
}
