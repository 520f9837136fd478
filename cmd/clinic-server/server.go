package main

import (
	"context"
	crypto_rand "crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/account"
	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/domain/dashboard"
	"github.com/clinic/clinic/internal/domain/doctor"
	"github.com/clinic/clinic/internal/domain/invoice"
	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/platform/action"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/middleware"
	"github.com/clinic/clinic/pkg/format"
)

const (
	bodyLimit       = "1M"
	cleanupInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, cfg.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	store, closeStore, err := newCacheStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open view cache")
	}
	defer closeStore()

	e, err := newServer(ctx, cfg, logger, pool, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// cacheNamespace prefixes every Redis key the server writes.
const cacheNamespace = "clinic"

// newCacheStore picks Redis when REDIS_URL is set so several instances share
// one cache, otherwise a process-local store.
func newCacheStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (middleware.CacheStore, func(), error) {
	if cfg.RedisURL != "" {
		store, err := middleware.NewRedisCacheStore(ctx, cfg.RedisURL, cacheNamespace)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("view cache: redis")
		return store, func() { _ = store.Close() }, nil
	}
	store := middleware.NewInMemoryCacheStore()
	store.StartCleanup(ctx, cleanupInterval)
	logger.Info().Msg("view cache: in-memory")
	return store, func() {}, nil
}

func sessionSecret(cfg *config.Config, logger zerolog.Logger) ([]byte, error) {
	if cfg.SessionSecret != "" {
		return []byte(cfg.SessionSecret), nil
	}
	// Validate has already rejected an empty secret outside development.
	secret := make([]byte, 32)
	if _, err := crypto_rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	logger.Warn().Msg("SESSION_SECRET not set; sessions will not survive a restart")
	return secret, nil
}

// newServer wires every route. Background cleanup stops when ctx ends.
func newServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool, store middleware.CacheStore) (*echo.Echo, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	money, err := format.New(cfg.CurrencyLocale)
	if err != nil {
		return nil, err
	}
	secret, err := sessionSecret(cfg, logger)
	if err != nil {
		return nil, err
	}
	sessions := auth.NewSessionManager(auth.SessionConfig{
		Secret: secret,
		TTL:    cfg.SessionTTL,
		Secure: cfg.IsProduction(),
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(bodyLimit))

	rateCfg := middleware.RateLimitConfig{RequestsPerSecond: cfg.RateLimitRPS, BurstSize: cfg.RateLimitBurst}
	if rateCfg.RequestsPerSecond <= 0 {
		rateCfg = middleware.DefaultRateLimitConfig()
	}
	globalLimiter := middleware.NewIPRateLimiter(rateCfg)
	globalLimiter.StartCleanup(ctx, cleanupInterval)
	e.Use(middleware.RateLimit(globalLimiter))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	if cfg.IsDev() {
		e.Use(sessions.DevAuthMiddleware(auth.AuthSkipper))
	} else {
		e.Use(sessions.Middleware(auth.AuthSkipper))
	}

	// Health
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool, func() *db.PoolStats {
		return db.GetPoolStats(pool.Stat())
	}))

	// Services
	validator := action.NewValidator()
	pipeline := action.NewPipeline(logger, middleware.NewRevalidator(store, logger))

	doctorSvc := doctor.NewService(doctor.NewRepoPG(pool), logger)
	patientSvc := patient.NewService(patient.NewRepoPG(pool), pipeline, validator, logger, cfg.PatientPhoneRequired)
	appointmentSvc := appointment.NewService(appointment.NewRepoPG(pool), pipeline, validator, logger, loc)
	invoiceSvc := invoice.NewService(invoice.NewRepoPG(pool), pipeline, validator, logger)
	dashboardSvc := dashboard.NewService(dashboard.NewRepoPG(pool), logger, loc)
	accountSvc := account.NewService(account.NewRepoPG(pool), logger)

	// Login gets its own, stricter limiter.
	loginLimiter := middleware.NewIPRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.LoginRateRPS,
		BurstSize:         cfg.LoginRateBurst,
	})
	loginLimiter.StartCleanup(ctx, cleanupInterval)
	account.NewHandler(accountSvc, sessions).RegisterRoutes(e, middleware.RateLimit(loginLimiter))

	dash := e.Group("/dashboard", middleware.ViewCache(middleware.ViewCacheConfig{
		Store:  store,
		TTL:    cfg.ViewCacheTTL,
		Logger: logger,
		Vary: func(c echo.Context) string {
			return string(auth.RoleFromContext(c.Request().Context()))
		},
	}))
	dashboard.NewHandler(dashboardSvc, appointmentSvc, invoiceSvc, doctorSvc, money).RegisterRoutes(dash)
	patient.NewHandler(patientSvc, money, loc).RegisterRoutes(dash)
	appointment.NewHandler(appointmentSvc, patientSvc, doctorSvc, loc).RegisterRoutes(dash)
	invoice.NewHandler(invoiceSvc, patientSvc, doctorSvc, money, loc).RegisterRoutes(dash)

	return e, nil
}
