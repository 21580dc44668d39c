package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/school-auth/internal/errors"
	"github.com/pribylovaa/school-auth/internal/models"
	logctx "github.com/pribylovaa/school-auth/internal/pkg/log"
	"github.com/pribylovaa/school-auth/internal/service"
)

// Guard — проверка токена и роли; реализуется *service.Service.
type Guard interface {
	Authenticate(ctx context.Context, rawToken string) (*models.Identity, error)
	Authorize(identity *models.Identity, allowed ...models.Role) error
}

type identityKey struct{}

// BearerToken извлекает токен из "Authorization: Bearer <token>".
// Схема сравнивается без учёта регистра; иначе возвращается "".
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

// Authenticate пропускает запрос дальше только с действительным токеном,
// кладёт Identity в контекст (IdentityFrom) и дополняет логгер запроса
// полями subject_id и role.
func Authenticate(g Guard) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := g.Authenticate(r.Context(), BearerToken(r))
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey{}, id)
			ctx = logctx.With(ctx,
				slog.String("subject_id", id.SubjectID.String()),
				slog.String("role", id.Role.String()),
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles пропускает запрос, только если роль Identity из контекста
// входит в allowed. Ставится после Authenticate.
func RequireRoles(g Guard, allowed ...models.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.Authorize(IdentityFrom(r.Context()), allowed...); err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFrom возвращает Identity, положенную Authenticate, или nil.
func IdentityFrom(ctx context.Context) *models.Identity {
	id, _ := ctx.Value(identityKey{}).(*models.Identity)
	return id
}

// WithIdentity кладёт Identity в контекст (для тестов хендлеров).
func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

var _ Guard = (*service.Service)(nil)
