package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/school-auth/internal/config"
	httpapi "github.com/pribylovaa/school-auth/internal/http"
	"github.com/pribylovaa/school-auth/internal/metrics"
	"github.com/pribylovaa/school-auth/internal/models"
	"github.com/pribylovaa/school-auth/internal/revocation"
	"github.com/pribylovaa/school-auth/internal/service"
	"github.com/pribylovaa/school-auth/internal/storage"
	"github.com/pribylovaa/school-auth/internal/storage/memory"
	"github.com/pribylovaa/school-auth/internal/storage/postgres"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("revocation", cfg.Revocation.Backend),
	)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("service_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("service_stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// Пул postgres открывается один раз и делится между хранилищами.
	var pg *postgres.Storage
	if cfg.Storage.Driver == config.StoragePostgres || cfg.Revocation.Backend == config.StoragePostgres {
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		str, err := postgres.New(dbCtx, cfg.DB.DatabaseURL)
		dbCancel()
		if err != nil {
			return err
		}
		defer str.Close()

		pg = str
		log.Info("postgres_connected")
	}

	var users storage.UserStorage
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		users = pg
	default:
		users = memory.New()
	}

	revoked, err := openRevocation(ctx, cfg, pg)
	if err != nil {
		return err
	}
	defer revoked.Close()
	log.Info("revocation_store_ready", slog.String("backend", cfg.Revocation.Backend))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	srvc := service.New(users, revoked, cfg.Auth, service.WithMetrics(m))
	log.Info("service_initialized")

	if err := bootstrapAdmin(ctx, srvc, cfg.Bootstrap, log); err != nil {
		return err
	}

	// Фоновая очистка набора отозванных токенов.
	go srvc.RunSweeper(ctx, cfg.Revocation.SweepInterval)

	var ready atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if ready.Load() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	mux.Handle("/", httpapi.NewRouter(srvc, httpapi.Options{
		Logger:         log,
		Timeout:        cfg.Timeouts.Request,
		BasePath:       cfg.HTTP.BasePath,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Metrics:        m,
	}))

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", slog.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	ready.Store(true)

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			return err
		}
	}

	ready.Store(false)

	// Graceful stop с таймаутом.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = httpSrv.Close()
	}

	return nil
}

// openRevocation выбирает хранилище отозванных токенов.
func openRevocation(ctx context.Context, cfg *config.Config, pg *postgres.Storage) (revocation.Store, error) {
	switch cfg.Revocation.Backend {
	case config.StorageRedis:
		rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return revocation.NewRedis(rctx, cfg.Redis.RedisURL, cfg.Revocation.KeyPrefix, cfg.Auth.Leeway)
	case config.StoragePostgres:
		return revocation.NewPostgres(pg.Pool()), nil
	default:
		return revocation.NewMemory(), nil
	}
}

// bootstrapAdmin создаёт администратора из конфигурации, если его ещё нет.
func bootstrapAdmin(ctx context.Context, srvc *service.Service, cfg config.BootstrapConfig, log *slog.Logger) error {
	if cfg.AdminUsername == "" {
		return nil
	}

	created, err := srvc.EnsureUser(ctx, cfg.AdminUsername, cfg.AdminDisplayName, cfg.AdminPassword, models.RoleAdmin)
	if err != nil {
		return err
	}

	if created {
		log.Info("bootstrap_admin_created")
	}

	return nil
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
