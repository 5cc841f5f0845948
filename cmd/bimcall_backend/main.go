package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/authz"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/services"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/handlers"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/middleware"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/platform/config"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/platform/metrics"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/repositories/database/sqlstore"
	"github.com/Abdulhamidsa/BimCall-sub002/pkg/database"
)

// @title BimCall Backend API
// @version 1.0
// @description Permission resolution and meeting closure for construction-project coordination.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()
	db, dialect, closeDB, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize database", slog.String("driver", cfg.DBDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeDB()

	m := metrics.New()
	repos := sqlstore.NewRepositoryProvider(db, dialect)
	serviceContainer := services.NewServiceContainer(cfg, repos, authz.NewEngine(nil), m)

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	rateLimiter := limiter.New(memory.NewStore(), rate)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.MetricsMiddleware(m),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, m, rateLimiter)

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("driver", cfg.DBDriver))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openStore connects to the configured database and brings its schema up to date.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, sqlstore.Dialect, func(), error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, sqlstore.Dialect{}, nil, err
		}
		logger.Info("SQLite database ready", slog.String("path", cfg.SQLitePath))
		return db, sqlstore.SQLite, func() { _ = db.Close() }, nil
	default:
		db, closeFn, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, sqlstore.Dialect{}, nil, err
		}
		if cfg.RunMigrations {
			logger.Info("Running database migrations...")
			if err := database.RunMigrations(db, cfg.MigrationsPath, logger); err != nil {
				closeFn()
				return nil, sqlstore.Dialect{}, nil, err
			}
		}
		return db, sqlstore.Postgres, closeFn, nil
	}
}
