// service содержит ядро аутентификации school-auth:
// выпуск токенов (Issue/Login), проверку запросов (Authenticate/Authorize),
// logout через набор отозванных токенов (Revoke) и его периодическую очистку.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для конкурентного
//     использования при условии, что хранилища потокобезопасны;
//   - Набор отозванных токенов передаётся явно (revocation.Store), глобального
//     состояния нет;
//   - Ошибки возвращаются как sentinel-значения и далее маппятся
//     транспортом на HTTP-коды (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"
	"time"

	"github.com/pribylovaa/school-auth/internal/config"
	"github.com/pribylovaa/school-auth/internal/metrics"
	"github.com/pribylovaa/school-auth/internal/revocation"
	"github.com/pribylovaa/school-auth/internal/storage"
)

var (
	// ErrMissingToken — bearer-токен не предъявлен. HTTP 401.
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidToken — токен не раскодируется, подпись не совпадает
	// или claims некорректны. HTTP 401.
	ErrInvalidToken = errors.New("malformed token")

	// ErrTokenExpired — текущее время >= exp. HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — токен отозван через logout и недействителен
	// независимо от срока. HTTP 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrForbidden — роль не входит в список разрешённых. HTTP 403.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials — неизвестный пользователь или неверный пароль.
	// Оба случая неразличимы снаружи. HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRole — роль вне перечисления student|staff|admin. HTTP 400.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidUsername — имя входа не проходит политику. HTTP 400.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrWeakPassword — пароль короче минимальной длины. HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrUsernameTaken — имя входа уже занято. HTTP 409.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrUserNotFound — пользователь не найден. HTTP 404.
	ErrUserNotFound = errors.New("user not found")
)

// Service описывает бизнес-логику аутентификации.
type Service struct {
	users   storage.UserStorage
	revoked revocation.Store
	cfg     config.AuthConfig
	now     func() time.Time
	metrics *metrics.Metrics
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник времени (тесты сценариев истечения).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics подключает Prometheus-метрики.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New создаёт новый экземпляр Service.
// Пустой секрет подписи — ошибка конфигурации, запасного значения нет.
func New(users storage.UserStorage, revoked revocation.Store, cfg config.AuthConfig, opts ...Option) *Service {
	if cfg.JWTSecret == "" {
		panic("service: empty JWT secret")
	}

	s := &Service{
		users:   users,
		revoked: revoked,
		cfg:     cfg,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}
