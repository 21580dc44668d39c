package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/school-auth/internal/http/handlers"
	"github.com/pribylovaa/school-auth/internal/http/middleware"
	"github.com/pribylovaa/school-auth/internal/metrics"
	"github.com/pribylovaa/school-auth/internal/models"
)

// Service — всё, что роутеру нужно от сервисного слоя.
type Service interface {
	handlers.AuthService
	middleware.Guard
}

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger         *slog.Logger
	Timeout        time.Duration
	BasePath       string // например, "/api"; если пустой — роуты регистрируются на корне.
	AllowedOrigins []string
	Metrics        *metrics.Metrics
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),                 // безопасно ловим паники
		middleware.RequestID(),               // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),      // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(opts.Metrics),     // счётчики по шаблону маршрута
		middleware.CORS(opts.AllowedOrigins), // preflight отвечаем до аутентификации
		middleware.Timeout(opts.Timeout),     // общий дедлайн запроса
	)

	h := handlers.New(svc)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, svc)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, svc)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, g middleware.Guard) {
	// auth: login и logout доступны без проверки токена.
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(g))

		r.Get("/auth/me", h.Me)

		r.With(middleware.RequireRoles(g, models.RoleAdmin)).Post("/users", h.CreateUser)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(g, models.RoleStaff, models.RoleAdmin))
			r.Get("/users", h.ListUsers)
			r.Get("/users/{id}", h.GetUser)
		})
	})
}
