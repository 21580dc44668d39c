package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/school-auth/internal/models"
	"github.com/pribylovaa/school-auth/internal/pkg/log"
	"github.com/pribylovaa/school-auth/internal/pkg/redact"
	"github.com/pribylovaa/school-auth/internal/storage"
)

// dummyHash сравнивается с паролем, когда пользователь не найден,
// чтобы время ответа не выдавало существование имени входа.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("school-auth-dummy-password"), bcrypt.DefaultCost)
	return h
})

// Login проверяет имя входа и пароль и выпускает токен.
// Неизвестное имя и неверный пароль дают одну и ту же ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*models.Token, error) {
	const op = "service.auth.Login"

	lg := log.From(ctx).With(slog.String("op", op), slog.String("username", redact.Username(username)))

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.metrics.AuthResult("login", "invalid_credentials")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			lg.Info("login_rejected")
			s.metrics.AuthResult("login", "invalid_credentials")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		lg.Error("user_lookup_failed", slog.String("err", err.Error()))
		s.metrics.AuthResult("login", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		lg.Info("login_rejected")
		s.metrics.AuthResult("login", "invalid_credentials")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.Issue(ctx, user.ID, user.DisplayName, user.Role)
	if err != nil {
		s.metrics.AuthResult("login", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("login_succeeded", slog.String("user_id", user.ID.String()), slog.String("role", user.Role.String()))
	s.metrics.AuthResult("login", "ok")

	return token, nil
}

// Authenticate проверяет bearer-токен запроса.
//
// Порядок проверок:
//  1. пустой токен -> ErrMissingToken;
//  2. токен в наборе отозванных -> ErrTokenRevoked (до криптографии);
//  3. подпись/формат -> ErrInvalidToken, now >= exp -> ErrTokenExpired.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*models.Identity, error) {
	const op = "service.auth.Authenticate"

	if rawToken == "" {
		s.metrics.AuthResult("authenticate", "missing_token")
		return nil, fmt.Errorf("%s: %w", op, ErrMissingToken)
	}

	revoked, err := s.revoked.IsRevoked(ctx, rawToken)
	if err != nil {
		log.From(ctx).Error("revocation_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		s.metrics.AuthResult("authenticate", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if revoked {
		s.metrics.AuthResult("authenticate", "revoked")
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	identity, err := s.parseToken(rawToken)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			s.metrics.AuthResult("authenticate", "expired")
		} else {
			s.metrics.AuthResult("authenticate", "malformed")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.AuthResult("authenticate", "ok")
	return identity, nil
}

// Authorize — чистая проверка принадлежности роли списку разрешённых.
func (s *Service) Authorize(identity *models.Identity, allowed ...models.Role) error {
	const op = "service.auth.Authorize"

	if identity == nil || !slices.Contains(allowed, identity.Role) {
		s.metrics.AuthResult("authorize", "forbidden")
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	return nil
}

// Revoke добавляет токен как есть в набор отозванных.
// Идемпотентна: повторный отзыв и отзыв мусора — не ошибки.
func (s *Service) Revoke(ctx context.Context, rawToken string) error {
	const op = "service.auth.Revoke"

	if rawToken == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingToken)
	}

	if err := s.revoked.Revoke(ctx, rawToken); err != nil {
		log.From(ctx).Error("revoke_failed",
			slog.String("op", op),
			slog.String("token", redact.Token()),
			slog.String("err", err.Error()),
		)
		s.metrics.AuthResult("revoke", "error")
		return fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.AuthResult("revoke", "ok")
	return nil
}
