package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/leavebalance"
	balanceMock "go-leave/internal/leavebalance/mock"
	"go-leave/internal/messaging/kafka/consumer"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

// fakeReader serves queued messages, then cancels the consumer's context.
type fakeReader struct {
	msgs      []kafkago.Message
	committed []kafkago.Message
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(f.msgs) == 0 {
		f.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := f.msgs[0]
	f.msgs = f.msgs[1:]
	return msg, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.committed = append(f.committed, msgs...)
	return nil
}

func employeeCreated(t *testing.T, id uuid.UUID, year int) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(events.EmployeeCreatedEvent{
		EventType:   events.EventEmployeeCreated,
		EmployeeID:  id.String(),
		BalanceYear: year,
		OccurredAt:  time.Now().UTC(),
	})
	assert.NoError(t, err)
	return kafkago.Message{Key: []byte(id.String()), Value: payload}
}

var fastRetry = consumer.Backoff{Initial: time.Millisecond, Max: 2 * time.Millisecond}

func run(ctx context.Context, reader *fakeReader, repo leavebalance.Repository) {
	consumer.ConsumeEmployeeLifecycle(ctx, reader, repo, clockwork.NewRealClock(), fastRetry, zap.NewNop())
}

func offsets(msgs []kafkago.Message) []int64 {
	out := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Offset)
	}
	return out
}

func TestConsumeEmployeeLifecycle(t *testing.T) {
	t.Run("provisions missing balance and commits", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := balanceMock.NewMockRepository(ctrl)
		id := uuid.New()

		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{msgs: []kafkago.Message{employeeCreated(t, id, 2026)}, cancel: cancel}

		repo.EXPECT().FindByEmployeeAndYear(gomock.Any(), id, 2026).Return(nil, nil)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		run(ctx, reader, repo)

		assert.Len(t, reader.committed, 1)
	})

	t.Run("poison message is committed and skipped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := balanceMock.NewMockRepository(ctrl)

		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{msgs: []kafkago.Message{{Value: []byte("{broken")}}, cancel: cancel}

		run(ctx, reader, repo)

		assert.Len(t, reader.committed, 1)
	})

	t.Run("storage failure retries the same message before moving on", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := balanceMock.NewMockRepository(ctrl)
		first, second := uuid.New(), uuid.New()

		m10 := employeeCreated(t, first, 2026)
		m10.Offset = 10
		m11 := employeeCreated(t, second, 2026)
		m11.Offset = 11

		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{msgs: []kafkago.Message{m10, m11}, cancel: cancel}

		gomock.InOrder(
			repo.EXPECT().FindByEmployeeAndYear(gomock.Any(), first, 2026).Return(nil, errors.New("db down")),
			repo.EXPECT().FindByEmployeeAndYear(gomock.Any(), first, 2026).Return(nil, errors.New("db down")),
			repo.EXPECT().FindByEmployeeAndYear(gomock.Any(), first, 2026).Return(nil, nil),
			repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
			repo.EXPECT().FindByEmployeeAndYear(gomock.Any(), second, 2026).Return(nil, nil),
			repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
		)

		run(ctx, reader, repo)

		assert.Equal(t, []int64{10, 11}, offsets(reader.committed))
	})

	t.Run("shutdown during retry leaves message uncommitted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := balanceMock.NewMockRepository(ctrl)
		id := uuid.New()

		m10 := employeeCreated(t, id, 2026)
		m10.Offset = 10
		m11 := employeeCreated(t, uuid.New(), 2026)
		m11.Offset = 11

		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{msgs: []kafkago.Message{m10, m11}, cancel: cancel}

		repo.EXPECT().FindByEmployeeAndYear(gomock.Any(), id, 2026).
			DoAndReturn(func(context.Context, uuid.UUID, int) (*leavebalance.LeaveBalance, error) {
				cancel()
				return nil, errors.New("db down")
			})

		run(ctx, reader, repo)

		assert.Empty(t, reader.committed)
		assert.Len(t, reader.msgs, 1, "later message must not be fetched")
	})
}

