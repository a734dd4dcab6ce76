package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"go-leave/internal/config"
	"go-leave/internal/events"
	"go-leave/internal/leavebalance"
	"go-leave/internal/messaging/kafka/consumer"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const employeeLifecycleGroup = "go-leave-balance-provisioner"

// RunConsumer provisions leave balances from employee lifecycle events until
// SIGINT or SIGTERM.
func RunConsumer(cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.consumer")

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	conn, err := Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          events.EmployeeLifecycleTopic,
		GroupID:        employeeLifecycleGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.ConsumeEmployeeLifecycle(ctx, reader, leavebalance.NewRepository(conn.GormDB), clockwork.NewRealClock(), consumer.Backoff{
		Initial: cfg.Kafka.RetryBackoff,
		Max:     cfg.Kafka.RetryBackoffMax,
	}, log)

	log.Info("consumer shutting down")
	return nil
}
