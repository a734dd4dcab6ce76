package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/leavebalance"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Backoff doubles from Initial up to Max between retries of the same message.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

func (b Backoff) delay(attempt int) time.Duration {
	initial, max := b.Initial, b.Max
	if initial <= 0 {
		initial = time.Second
	}
	if max < initial {
		max = initial
	}
	d := initial
	for i := 1; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		d = max
	}
	return d
}

// ConsumeEmployeeLifecycle makes sure every employee_created event has a matching
// leave balance row. Rows written by the API in the same transaction are skipped,
// so the consumer only fills gaps left by imports or manual inserts.
//
// A storage failure retries the same message until it succeeds or ctx ends.
// Commits are per-partition offsets, so fetching past a failed message would
// lose it once a later one is committed.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	balances leavebalance.Repository,
	clock clockwork.Clock,
	backoff Backoff,
	logger *zap.Logger,
) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")

	fetchFailures := 0
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			fetchFailures++
			log.Error("fetch employee lifecycle message failed", zap.Int("attempt", fetchFailures), zap.Error(err))
			if !wait(ctx, clock, backoff.delay(fetchFailures)) {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			continue
		}
		fetchFailures = 0

		if !handle(ctx, msg, balances, clock, backoff, log) {
			log.Info("employee lifecycle consumer stopped",
				zap.Int("partition", msg.Partition),
				zap.Int64("uncommitted_offset", msg.Offset),
			)
			return
		}
		commit(ctx, reader, msg, log)
	}
}

// handle returns false only when ctx ended before msg could be processed.
func handle(
	ctx context.Context,
	msg kafkago.Message,
	balances leavebalance.Repository,
	clock clockwork.Clock,
	backoff Backoff,
	log *zap.Logger,
) bool {
	var event events.EmployeeCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode employee_created event failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		return true
	}
	if event.EventType != events.EventEmployeeCreated {
		return true
	}

	employeeID, err := uuid.Parse(event.EmployeeID)
	if err != nil || event.BalanceYear == 0 {
		log.Error("employee_created event is incomplete, skipping",
			zap.String("employee_id", event.EmployeeID),
			zap.Int("balance_year", event.BalanceYear),
		)
		return true
	}

	for attempt := 1; ; attempt++ {
		created, err := leavebalance.EnsureForYear(ctx, balances, employeeID, event.BalanceYear)
		if err == nil {
			if created {
				log.Info("leave balance provisioned from employee_created event",
					zap.String("employee_id", event.EmployeeID),
					zap.Int("year", event.BalanceYear),
				)
			} else {
				log.Debug("leave balance already present",
					zap.String("employee_id", event.EmployeeID),
					zap.Int("year", event.BalanceYear),
				)
			}
			return true
		}

		log.Error("ensure leave balance failed, retrying",
			zap.String("employee_id", event.EmployeeID),
			zap.Int("year", event.BalanceYear),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if !wait(ctx, clock, backoff.delay(attempt)) {
			return false
		}
	}
}

func wait(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	timer := clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

// A failed commit is not retried: the next successful commit covers this offset.
func commit(ctx context.Context, reader MessageReader, msg kafkago.Message, log *zap.Logger) {
	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit employee lifecycle message failed", zap.Int64("offset", msg.Offset), zap.Error(err))
	}
}
