package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"go-leave/internal/config"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/messaging/kafka/producer"
	"go-leave/internal/shared/connection"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// RunWorker relays outbox rows to Kafka until SIGINT or SIGTERM.
func RunWorker(cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.worker")

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	conn, err := Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.Kafka.MaxRetries, logger)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(conn.SQLDB)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, clockwork.NewRealClock(), producer.RelayConfig{
		PollInterval: cfg.Kafka.PollInterval,
		BatchSize:    cfg.Kafka.BatchSize,
		Lease:        cfg.Kafka.ClaimLease,
		MaxAttempts:  cfg.Kafka.MaxAttempts,
	}, log)

	log.Info("worker shutting down")
	return nil
}
