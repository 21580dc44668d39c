// revocation хранит отозванные (logout) токены до их естественного истечения.
//
// Основные аспекты:
//   - Токен, присутствующий в хранилище, всегда отвергается Guard'ом,
//     независимо от подписи и срока действия;
//   - Очистка (Sweep) — best-effort: запись, пережившая свой exp, ничего не ломает,
//     просроченный токен отвергается проверкой срока;
//   - memory подходит только для одного экземпляра сервиса; для нескольких
//     экземпляров используйте redis или postgres.
package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store — контракт хранилища отозванных токенов.
// Реализации безопасны для конкурентного использования.
type Store interface {
	// Revoke добавляет токен в набор. Повторный вызов не является ошибкой.
	Revoke(ctx context.Context, token string) error
	// IsRevoked сообщает, присутствует ли токен в наборе.
	IsRevoked(ctx context.Context, token string) (bool, error)
	// Sweep удаляет записи с exp <= cutoff и нераскодируемые записи,
	// возвращает число удалённых. Вызывающий передаёт cutoff = now - leeway,
	// чтобы запись жила, пока токен ещё может пройти проверку срока.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
	// Close освобождает ресурсы.
	Close() error
}

// ExpiresAt извлекает exp из токена БЕЗ проверки подписи.
// ok=false означает, что токен не раскодировать или exp отсутствует.
func ExpiresAt(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims

	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time.UTC(), true
}

// hashToken — ключ хранения: сам токен во внешние хранилища не пишем.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
