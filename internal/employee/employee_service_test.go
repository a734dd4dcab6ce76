package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-leave/internal/domain"
	"go-leave/internal/employee"
	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/events"
	"go-leave/internal/leavebalance"
	"go-leave/internal/shared/cache"
	"go-leave/internal/shared/contextutil"

	employeeMock "go-leave/internal/employee/mock"
	balanceMock "go-leave/internal/leavebalance/mock"
	"go-leave/internal/messaging/kafka"
	kafkaMock "go-leave/internal/messaging/kafka/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   employee.Service
	repo      *employeeMock.MockRepository
	balances  *balanceMock.MockRepository
	outbox    *kafkaMock.MockOutboxRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, _ := sqlmock.New()
	dbRedis, redisMock := redismock.NewClientMock()
	repo := employeeMock.NewMockRepository(ctrl)
	balances := balanceMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	svc := employee.NewServiceWithOutbox(db, repo, balances, outboxRepo, cache.New(dbRedis), clockwork.NewFakeClockAt(fixedNow))

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		balances:  balances,
		outbox:    outboxRepo,
		redismock: redisMock,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

type outboxMatcher struct {
	requestID string
	eventType string
}

func MatchOutbox(requestID, eventType string) gomock.Matcher {
	return &outboxMatcher{requestID: requestID, eventType: eventType}
}

func (m *outboxMatcher) Matches(x any) bool {
	event, ok := x.(kafka.OutboxEvent)
	if !ok {
		return false
	}
	return event.RequestID == m.requestID && event.EventType == m.eventType
}

func (m *outboxMatcher) String() string {
	return "outbox event " + m.eventType + " with request id " + m.requestID
}

func validCreateRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		Name:        "Jane Doe",
		Email:       "  Jane.Doe@Example.com ",
		Department:  "Engineering",
		JoiningDate: "2024-01-01",
	}
}

func TestEmployeeService_Create(t *testing.T) {
	t.Run("success - creates employee, balance and event", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		rid := "REQ-123"
		ctx := contextutil.WithRequestID(context.Background(), rid)
		req := validCreateRequest()

		expectTx(t, deps.sqlMock, true)

		var createdID uuid.UUID
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Equal(t, "jane.doe@example.com", e.Email)
				assert.Equal(t, domain.RoleEmployee, e.Role)
				assert.True(t, e.IsActive)
				createdID = e.ID
				return nil
			})

		deps.balances.EXPECT().WithTx(gomock.Any()).Return(deps.balances)
		deps.balances.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, b *leavebalance.LeaveBalance) error {
				assert.Equal(t, createdID, b.EmployeeID)
				assert.Equal(t, 2026, b.Year)
				assert.Equal(t, leavebalance.QuotaCasual, b.CasualLeaveBalance)
				assert.Equal(t, leavebalance.QuotaSick, b.SickLeaveBalance)
				return nil
			})

		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(gomock.Any(), MatchOutbox(rid, events.EventEmployeeCreated)).
			DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
				var payload events.EmployeeCreatedEvent
				assert.NoError(t, json.Unmarshal(e.Payload, &payload))
				assert.Equal(t, createdID.String(), payload.EmployeeID)
				assert.Equal(t, 2026, payload.BalanceYear)
				assert.Equal(t, events.EmployeeLifecycleTopic, e.Topic)
				return nil
			})

		deps.redismock.ExpectDel(employee.AllEmployeesKey).SetVal(1)

		resp, err := deps.service.Create(ctx, req, domain.RoleHR)

		assert.NoError(t, err)
		assert.Equal(t, createdID.String(), resp.ID)
		assert.Equal(t, "2024-01-01", resp.JoiningDate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("non-hr creator is forbidden", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(context.Background(), validCreateRequest(), domain.RoleEmployee)

		assert.ErrorIs(t, err, employeeerrors.ErrHROnly)
	})

	t.Run("joining date in future", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest()
		req.JoiningDate = "2026-03-03"

		_, err := deps.service.Create(context.Background(), req, domain.RoleHR)

		assert.ErrorIs(t, err, employeeerrors.ErrJoiningDateInFuture)
	})

	t.Run("duplicate email -> conflict and rollback", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		ctx := context.Background()
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_employees_email"})

		_, err := deps.service.Create(ctx, validCreateRequest(), domain.RoleHR)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("balance bootstrap failure rolls back employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		ctx := context.Background()
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.balances.EXPECT().WithTx(gomock.Any()).Return(deps.balances)
		deps.balances.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("db down"))

		_, err := deps.service.Create(ctx, validCreateRequest(), domain.RoleHR)

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})
}

func TestEmployeeService_Find(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss loads and caches", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		empl := &employee.Employee{ID: id, Name: "Jane", Email: "jane@example.com", IsActive: true}
		payload, _ := json.Marshal(empl)

		deps.redismock.ExpectGet(employee.EmployeeKey(id.String())).RedisNil()
		deps.repo.EXPECT().FindByID(ctx, id).Return(empl, nil)
		deps.redismock.ExpectSet(employee.EmployeeKey(id.String()), payload, cache.ItemTTL).SetVal("OK")

		got, err := deps.service.Find(ctx, id.String())

		assert.NoError(t, err)
		assert.Equal(t, "Jane", got.Name)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		payload, _ := json.Marshal(employee.Employee{ID: id, Name: "Cached"})
		deps.redismock.ExpectGet(employee.EmployeeKey(id.String())).SetVal(string(payload))

		got, err := deps.service.Find(ctx, id.String())

		assert.NoError(t, err)
		assert.Equal(t, "Cached", got.Name)
	})

	t.Run("absent returns nil", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		deps.redismock.ExpectGet(employee.EmployeeKey(id.String())).RedisNil()
		deps.repo.EXPECT().FindByID(ctx, id).Return(&employee.Employee{}, gorm.ErrRecordNotFound)

		got, err := deps.service.Find(ctx, id.String())

		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("malformed id returns nil", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		got, err := deps.service.Find(ctx, "not-a-uuid")

		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("GetByID maps absence to not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetByID(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_FindByEmail(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()
	ctx := context.Background()

	deps.repo.EXPECT().FindActiveByEmail(ctx, "JANE@example.com").Return(&employee.Employee{}, gorm.ErrRecordNotFound)

	got, err := deps.service.FindByEmail(ctx, "JANE@example.com")

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestEmployeeService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("redis outage falls back to repository", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		empls := []employee.Employee{
			{ID: uuid.New(), Name: "B", JoiningDate: fixedNow},
			{ID: uuid.New(), Name: "A", JoiningDate: fixedNow},
		}

		deps.redismock.ExpectGet(employee.AllEmployeesKey).SetErr(errors.New("connection refused"))
		deps.repo.EXPECT().FindAllActive(ctx).Return(empls, nil)
		deps.redismock.Regexp().ExpectSet(employee.AllEmployeesKey, `.*`, cache.ListTTL).SetErr(errors.New("connection refused"))

		resp, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
		assert.Equal(t, "B", resp[0].Name)
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.redismock.ExpectGet(employee.AllEmployeesKey).RedisNil()
		deps.repo.EXPECT().FindAllActive(ctx).Return(nil, errors.New("db down"))

		_, err := deps.service.GetAll(ctx)

		assert.Error(t, err)
	})
}
