package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Server struct {
		Port            string        `env:"PORT" envDefault:"3000"`
		ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
		WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
		IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	} `envPrefix:"SERVER_"`

	Database struct {
		Host            string        `env:"HOST,required"`
		Port            string        `env:"PORT" envDefault:"5432"`
		User            string        `env:"USER,required"`
		Password        string        `env:"PASSWORD,required"`
		Name            string        `env:"NAME,required"`
		SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
		MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
		MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
		ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
		MaxRetries      int           `env:"MAX_RETRIES" envDefault:"5"`
	} `envPrefix:"DB_"`

	Redis struct {
		Addr       string `env:"ADDR" envDefault:"localhost:6379"`
		Password   string `env:"PASSWORD"`
		DB         int    `env:"DB" envDefault:"0"`
		MaxRetries int    `env:"MAX_RETRIES" envDefault:"3"`
	} `envPrefix:"REDIS_"`

	Kafka struct {
		Broker       string        `env:"BROKER"`
		PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"3s"`
		MaxRetries   int           `env:"MAX_RETRIES" envDefault:"5"`
		BatchSize    int           `env:"BATCH_SIZE" envDefault:"50"`
		ClaimLease   time.Duration `env:"CLAIM_LEASE" envDefault:"30s"`
		MaxAttempts  int           `env:"MAX_ATTEMPTS" envDefault:"8"`

		// Consumer retry delay for a message whose storage write failed.
		RetryBackoff    time.Duration `env:"RETRY_BACKOFF" envDefault:"1s"`
		RetryBackoffMax time.Duration `env:"RETRY_BACKOFF_MAX" envDefault:"30s"`
	} `envPrefix:"KAFKA_"`

	JWT struct {
		Secret string        `env:"SECRET,required,notEmpty"`
		TTL    time.Duration `env:"TTL" envDefault:"24h"`
	} `envPrefix:"JWT_"`

	RateLimit struct {
		Window time.Duration `env:"WINDOW" envDefault:"15m"`
		Max    int           `env:"MAX" envDefault:"100"`
	} `envPrefix:"RATE_LIMIT_"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, fmt.Errorf("config: %w", aggErr.Errors[0])
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.RateLimit.Max <= 0 {
		return nil, fmt.Errorf("config: RATE_LIMIT_MAX must be positive")
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// DSN is the PostgreSQL URL form used by the migration runner.
func (c *Config) DSN() string {
	d := c.Database
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}
