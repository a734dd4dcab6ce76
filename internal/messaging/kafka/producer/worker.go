package producer

import (
	"context"
	"time"

	"go-leave/internal/messaging/kafka"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// Lease hides claimed rows from concurrent relays while they publish.
	Lease       time.Duration
	MaxAttempts int
}

func (c RelayConfig) withDefaults() RelayConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = 3 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.Lease <= 0 {
		c.Lease = 30 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 8
	}
	return c
}

// ProcessOutboxEvents relays outbox rows on every tick until ctx is cancelled.
func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	clock clockwork.Clock,
	cfg RelayConfig,
	logger *zap.Logger,
) {
	cfg = cfg.withDefaults()
	log := logger.Named("kafka.producer.worker")

	ticker := clock.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	log.Info("outbox worker started",
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Int("max_attempts", cfg.MaxAttempts),
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-ticker.Chan():
			if _, err := ProcessPendingEvents(ctx, repo, writer, cfg, log); err != nil {
				log.Error("process outbox events failed", zap.Error(err))
			}
		}
	}
}

// ProcessPendingEvents publishes one claimed batch and returns how many rows were sent.
func ProcessPendingEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	cfg RelayConfig,
	logger *zap.Logger,
) (int, error) {
	cfg = cfg.withDefaults()

	events, err := repo.ClaimPending(ctx, cfg.BatchSize, cfg.Lease)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	logger.Debug("processing claimed outbox events", zap.Int("count", len(events)))

	sent := 0
	for _, event := range events {
		fields := []zap.Field{
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("aggregate_id", event.AggregateID),
			zap.String("request_id", event.RequestID),
		}

		if err := publishEvent(ctx, writer, event); err != nil {
			attempt := event.RetryCount + 1
			if attempt >= cfg.MaxAttempts {
				logger.Error("outbox event dead-lettered", append(fields, zap.Int("attempt", attempt), zap.Error(err))...)
			} else {
				logger.Warn("publish outbox event failed", append(fields, zap.Int("attempt", attempt), zap.Error(err))...)
			}
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error(), cfg.MaxAttempts); markErr != nil {
				logger.Error("mark outbox failed failed", append(fields, zap.Error(markErr))...)
			}
			continue
		}

		// A lost MarkSent only means the lease expires and the event is sent again.
		if err := repo.MarkSent(ctx, event.ID); err != nil {
			logger.Error("mark outbox sent failed", append(fields, zap.Error(err))...)
			continue
		}
		sent++

		logger.Info("outbox event sent", fields...)
	}

	return sent, nil
}
