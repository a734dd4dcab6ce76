package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"go-leave/internal/config"
	"go-leave/internal/middleware"
	"go-leave/internal/shared/connection"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infra holds the long-lived connections shared by every module.
type Infra struct {
	GormDB *gorm.DB
	SQLDB  *sql.DB
	Redis  *redis.Client
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.SQLDB != nil {
		_ = i.SQLDB.Close()
	}
}

// Connect opens PostgreSQL and Redis. A Redis outage is logged and the API runs
// uncached; a database failure is fatal.
func Connect(cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	gormDB, sqlDB, err := connection.ConnectGORMWithRetry(connection.DatabaseOptions{
		Host:            cfg.Database.Host,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Name:            cfg.Database.Name,
		Port:            cfg.Database.Port,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		MaxRetries:      cfg.Database.MaxRetries,
	}, logger)
	if err != nil {
		return nil, err
	}

	rdb, err := connection.ConnectRedisWithRetry(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Redis.MaxRetries, logger)
	if err != nil {
		logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
	}

	return &Infra{GormDB: gormDB, SQLDB: sqlDB, Redis: rdb}, nil
}

// BuildApp wires global middleware, the health probe and every module onto router.
func BuildApp(router *gin.Engine, cfg *config.Config, infra *Infra, logger *zap.Logger) error {
	router.Use(
		middleware.ContextLogger(logger),
		middleware.RateLimitByIP(cfg.RateLimit.Window, cfg.RateLimit.Max),
	)
	router.GET("/health", healthHandler(infra))

	return registerModules(router, cfg, infra, logger)
}

func healthHandler(infra *Infra) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "up", "cache": "up"}
		code := http.StatusOK
		if err := infra.SQLDB.PingContext(ctx); err != nil {
			status["status"], status["database"] = "degraded", "down"
			code = http.StatusServiceUnavailable
		}
		if infra.Redis == nil || infra.Redis.Ping(ctx).Err() != nil {
			status["cache"] = "down"
		}
		response.Success(c, code, status, nil)
	}
}
