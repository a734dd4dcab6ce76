package connection

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const retryDelay = 5 * time.Second

type DatabaseOptions struct {
	Host, User, Password, Name, Port, SSLMode string
	MaxOpenConns                              int
	MaxIdleConns                              int
	ConnMaxLifetime                           time.Duration
	MaxRetries                                int
}

// ConnectGORMWithRetry opens the PostgreSQL pool and returns both the gorm handle and
// the underlying *sql.DB used for explicit transactions.
func ConnectGORMWithRetry(opts DatabaseOptions, logger *zap.Logger) (*gorm.DB, *sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		opts.Host, opts.User, opts.Password, opts.Name, opts.Port, opts.SSLMode,
	)
	log := logger.Named("connection.postgres")

	var lastErr error
	for i := 1; i <= opts.MaxRetries; i++ {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			lastErr = err
			log.Warn("gorm open failed", zap.Int("attempt", i), zap.Int("max", opts.MaxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		sqlDB, err := db.DB()
		if err != nil {
			lastErr = err
			log.Warn("get sql.DB failed", zap.Int("attempt", i), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		if err := sqlDB.Ping(); err != nil {
			lastErr = err
			log.Warn("db ping failed", zap.Int("attempt", i), zap.Int("max", opts.MaxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

		log.Info("connected to database", zap.String("host", opts.Host), zap.String("name", opts.Name))
		return db, sqlDB, nil
	}

	return nil, nil, fmt.Errorf("database connection failed after %d retries: %w", opts.MaxRetries, lastErr)
}

// ConnectRedisWithRetry always returns a client. A non-nil error means the server was
// not reachable yet; go-redis keeps redialing on use, so callers may keep the client.
func ConnectRedisWithRetry(opts *redis.Options, maxRetries int, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(opts)
	log := logger.Named("connection.redis")

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		lastErr = rdb.Ping(ctx).Err()
		cancel()
		if lastErr == nil {
			log.Info("connected to redis", zap.String("addr", opts.Addr))
			return rdb, nil
		}

		log.Warn("redis ping failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(lastErr))
		if i < maxRetries {
			time.Sleep(retryDelay)
		}
	}

	return rdb, fmt.Errorf("redis unreachable after %d retries: %w", maxRetries, lastErr)
}

func ConnectKafkaWithRetry(broker string, maxRetries int, logger *zap.Logger) (*kafkago.Writer, error) {
	log := logger.Named("connection.kafka")

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		conn, err := kafkago.Dial("tcp", broker)
		if err == nil {
			_ = conn.Close()
			log.Info("connected to kafka", zap.String("broker", broker))
			return &kafkago.Writer{
				Addr:                   kafkago.TCP(broker),
				Balancer:               &kafkago.Hash{},
				RequiredAcks:           kafkago.RequireAll,
				AllowAutoTopicCreation: true,
			}, nil
		}

		lastErr = err
		log.Warn("kafka dial failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("kafka connection failed after %d retries: %w", maxRetries, lastErr)
}
