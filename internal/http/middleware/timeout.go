package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/school-auth/internal/errors"
	logctx "github.com/pribylovaa/school-auth/internal/pkg/log"
)

// Timeout навешивает deadline на запрос, если его ещё нет.
// Если обработчик вернулся по истёкшему дедлайну, ничего не записав,
// клиент получает 504/deadline_exceeded в едином формате ошибок.
// Значение <=0 делает мидлвар no-op.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r) // уважаем существующий deadline.
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			r = r.WithContext(ctx)
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			if sw.status == 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				logctx.From(ctx).Warn("request_timeout",
					slog.String("path", r.URL.Path),
					slog.Duration("timeout", d),
				)
				apierrors.WriteError(sw, r, context.DeadlineExceeded)
			}
		})
	}
}
