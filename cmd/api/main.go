//	@title			OptiBridge API
//	@version		1.0
//	@description	Image optimisation and upload bridge: transcode to WebP, then publish to Cloudinary or R2.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/optibridge/service/internal/cache"
	"github.com/optibridge/service/internal/config"
	"github.com/optibridge/service/internal/db"
	"github.com/optibridge/service/internal/history"
	"github.com/optibridge/service/internal/metrics"
	appMiddleware "github.com/optibridge/service/internal/middleware"
	"github.com/optibridge/service/internal/upload"
	"github.com/optibridge/service/pkg/logger"

	_ "github.com/optibridge/service/docs/swagger"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	settings, err := config.NewSettingsStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("settings store init failed")
	}

	store, closeStore, err := openCache(ctx, cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Cache.Backend).Msg("cache init failed")
	}
	defer closeStore()

	// Wire dependencies: repository → service → handler
	historyRepo := history.NewRepository(pool)
	historyHandler := history.NewHandler(historyRepo)

	uploadSvc := upload.NewService(store, historyRepo,
		upload.WithMetrics(metrics.NewProm(cfg.MetricsNamespace, nil)),
		upload.WithMaxConcurrent(cfg.Transcode.MaxConcurrent),
		upload.WithThumbnailSize(cfg.Transcode.ThumbnailSize),
	)
	uploadHandler := upload.NewHandler(uploadSvc, settings)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler(nil))

	// Swagger UI, available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTSecret != "" {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
		} else {
			log.Warn().Msg("JWT_SECRET is empty, API is unauthenticated")
		}

		r.Route("/images", func(r chi.Router) {
			r.Post("/", uploadHandler.ProcessFile)
			r.Post("/clipboard", uploadHandler.ProcessClipboard)
			r.Post("/{handle}/upload", uploadHandler.Upload)
		})
		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.List)
			r.Delete("/{id}", historyHandler.Delete)
		})
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", uploadHandler.GetSettings)
			r.Put("/", uploadHandler.UpdateSettings)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		log.Info().Msgf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
		return
	}

	log.Info().Msg("server stopped")
}

// openCache builds the configured cache backend. The memory backend starts
// its TTL sweeper on ctx when a TTL is set.
func openCache(ctx context.Context, cfg config.CacheConfig) (cache.Store, func(), error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		rs, err := cache.NewRedisStore(cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	case config.CacheBackendMemory, "":
		ms := cache.NewMemoryStore(cache.WithTTL(cfg.TTL))
		go ms.Run(ctx, cfg.SweepInterval)
		return ms, func() {}, nil
	default:
		return nil, nil, errors.New("unknown cache backend " + cfg.Backend)
	}
}
