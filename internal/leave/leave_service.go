package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-leave/internal/employee"
	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/events"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/leavebalance"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/cache"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func EmployeeLeavesKey(employeeID string) string {
	return "leaves:employee:" + employeeID
}

func BalanceKey(employeeID string, year int) string {
	return fmt.Sprintf("leave_balance:%s:%d", employeeID, year)
}

// EmployeeFinder resolves employees; Find returns nil, nil for unknown ids.
type EmployeeFinder interface {
	Find(ctx context.Context, id string) (*employee.Employee, error)
}

type Service interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveResponse, error)
	// Process resolves a pending leave. Approval re-checks the remaining balance and
	// fails with *leaveerrors.InsufficientBalanceError, leaving the request pending,
	// when earlier approvals have used up what it needs.
	Process(ctx context.Context, id, resolverID string, req ProcessLeaveRequest) (LeaveResponse, error)
	GetBalance(ctx context.Context, employeeID string) (BalanceResponse, error)
	GetEmployeeLeaves(ctx context.Context, employeeID string) ([]LeaveResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	balances  leavebalance.Repository
	employees EmployeeFinder
	outbox    kafka.OutboxRepository
	cache     *cache.Store
	clock     clockwork.Clock
	sf        *singleflight.Group
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balances leavebalance.Repository,
	employees EmployeeFinder,
	store *cache.Store,
	clock clockwork.Clock,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, balances, employees, nil, store, clock, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	balances leavebalance.Repository,
	employees EmployeeFinder,
	outboxRepo kafka.OutboxRepository,
	store *cache.Store,
	clock clockwork.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &service{
		db:        db,
		repo:      repo,
		balances:  balances,
		employees: employees,
		outbox:    outboxRepo,
		cache:     store,
		clock:     clock,
		sf:        &singleflight.Group{},
		logger:    l,
	}
}

// Apply validates and records a pending leave request. The balance is checked but
// not debited; debiting happens on approval.
func (s *service) Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("apply leave requested",
		zap.String("employee_id", req.EmployeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	if req.LeaveType != leavebalance.TypeCasual && req.LeaveType != leavebalance.TypeSick {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveType
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	empl, err := s.employees.Find(ctx, req.EmployeeID)
	if err != nil {
		log.Error("apply leave resolve employee failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if empl == nil {
		log.Warn("apply leave unknown employee", zap.String("employee_id", req.EmployeeID))
		return LeaveResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	if startDate.After(endDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}
	if startDate.Before(dateOf(empl.JoiningDate)) {
		log.Warn("apply leave before joining date",
			zap.String("employee_id", req.EmployeeID),
			zap.String("joining_date", empl.JoiningDate.Format(dateLayout)),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveBeforeJoining
	}

	totalDays := WorkingDays(startDate, endDate)
	if totalDays <= 0 {
		return LeaveResponse{}, leaveerrors.ErrZeroDurationLeave
	}

	year := s.currentYear()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("apply leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	// The balance row lock serialises concurrent applications of one employee.
	balance, err := s.balances.WithTx(tx).FindByEmployeeAndYearForUpdate(ctx, empl.ID, year)
	if err != nil {
		log.Error("apply leave lock balance failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	qtx := s.repo.WithTx(tx)
	overlap, err := qtx.HasOverlappingPeriod(ctx, empl.ID, startDate, endDate)
	if err != nil {
		log.Error("apply leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		log.Warn("apply leave overlap detected",
			zap.String("employee_id", req.EmployeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	if balance == nil {
		log.Warn("apply leave balance missing", zap.String("employee_id", req.EmployeeID), zap.Int("year", year))
		return LeaveResponse{}, leaveerrors.ErrBalanceRecordMissing
	}
	if available := balance.Remaining(req.LeaveType); totalDays > available {
		log.Warn("apply leave insufficient balance",
			zap.String("employee_id", req.EmployeeID),
			zap.String("leave_type", req.LeaveType),
			zap.Int("requested", totalDays),
			zap.Int("available", available),
		)
		return LeaveResponse{}, &leaveerrors.InsufficientBalanceError{LeaveType: req.LeaveType, Available: available}
	}

	l := &Leave{
		ID:         uuid.New(),
		EmployeeID: empl.ID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalDays:  totalDays,
		Reason:     req.Reason,
		Status:     StatusPending,
	}
	if err := qtx.Create(ctx, l); err != nil {
		log.Error("apply leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.enqueue(ctx, tx, l.ID.String(), events.EventLeaveApplied, events.LeaveAppliedEvent{
		EventType:  events.EventLeaveApplied,
		RequestID:  rid,
		LeaveID:    l.ID.String(),
		EmployeeID: empl.ID.String(),
		LeaveType:  l.LeaveType,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		TotalDays:  totalDays,
		OccurredAt: s.clock.Now().UTC(),
	}); err != nil {
		log.Error("apply leave outbox persist failed", zap.String("leave_id", l.ID.String()), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("apply leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.invalidate(ctx, empl.ID.String(), year)

	log.Info("apply leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", empl.ID.String()),
		zap.Int("total_days", totalDays),
	)

	l.Employee = empl
	return mapToResponse(*l), nil
}

// Process resolves a pending leave request exactly once. Approval debits the
// employee's balance for the current year.
func (s *service) Process(ctx context.Context, id, resolverID string, req ProcessLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("process leave requested",
		zap.String("leave_id", id),
		zap.String("action", req.Action),
		zap.String("resolver_id", resolverID),
	)

	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	var status string
	switch req.Action {
	case ActionApprove:
		status = StatusApproved
	case ActionReject:
		status = StatusRejected
	default:
		return LeaveResponse{}, leaveerrors.ErrInvalidAction
	}

	resolver, err := uuid.Parse(resolverID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidResolverID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("process leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	l, err := qtx.FindByIDForUpdate(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		log.Error("process leave load failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if l.IsResolved() {
		log.Warn("process leave already processed",
			zap.String("leave_id", id),
			zap.String("status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyProcessed
	}

	now := s.clock.Now()
	resolvedAt := now.UTC()
	l.Status = status
	l.ResolvedBy = &resolver
	l.ResolvedAt = &resolvedAt
	l.Comments = req.Comments

	year := now.Year()
	if status == StatusApproved {
		btx := s.balances.WithTx(tx)
		balance, err := btx.FindByEmployeeAndYearForUpdate(ctx, l.EmployeeID, year)
		if err != nil {
			log.Error("process leave lock balance failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		if balance == nil {
			log.Warn("process leave balance missing",
				zap.String("employee_id", l.EmployeeID.String()),
				zap.Int("year", year),
			)
			return LeaveResponse{}, leaveerrors.ErrBalanceRecordMissing
		}

		// Pending requests are checked individually at apply; together they may exceed
		// what is left.
		if available := balance.Remaining(l.LeaveType); l.TotalDays > available {
			log.Warn("process leave insufficient balance",
				zap.String("leave_id", id),
				zap.Int("requested", l.TotalDays),
				zap.Int("available", available),
			)
			return LeaveResponse{}, &leaveerrors.InsufficientBalanceError{LeaveType: l.LeaveType, Available: available}
		}

		balance.Debit(l.LeaveType, l.TotalDays)
		if err := btx.Update(ctx, balance); err != nil {
			log.Error("process leave debit balance failed", zap.Error(err))
			return LeaveResponse{}, err
		}
	}

	if err := qtx.Update(ctx, l); err != nil {
		log.Error("process leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.enqueue(ctx, tx, l.ID.String(), events.EventLeaveProcessed, events.LeaveProcessedEvent{
		EventType:  events.EventLeaveProcessed,
		RequestID:  rid,
		LeaveID:    l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		Status:     status,
		ResolvedBy: resolver.String(),
		TotalDays:  l.TotalDays,
		OccurredAt: resolvedAt,
	}); err != nil {
		log.Error("process leave outbox persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("process leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.invalidate(ctx, l.EmployeeID.String(), year)

	log.Info("process leave success",
		zap.String("leave_id", id),
		zap.String("status", status),
		zap.String("resolver_id", resolverID),
	)

	if empl, err := s.employees.Find(ctx, l.EmployeeID.String()); err == nil {
		l.Employee = empl
	}
	return mapToResponse(*l), nil
}

func (s *service) GetBalance(ctx context.Context, employeeID string) (BalanceResponse, error) {
	s.logger.Debug("get leave balance requested", zap.String("employee_id", employeeID))

	eid, err := uuid.Parse(employeeID)
	if err != nil {
		return BalanceResponse{}, leaveerrors.ErrBalanceRecordMissing
	}

	year := s.currentYear()
	key := BalanceKey(eid.String(), year)

	var cached leavebalance.LeaveBalance
	if s.cache.Get(ctx, key, &cached) {
		return toBalanceResponse(&cached), nil
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		balance, err := s.balances.FindByEmployeeAndYear(ctx, eid, year)
		if err != nil {
			return nil, err
		}
		if balance == nil {
			return nil, leaveerrors.ErrBalanceRecordMissing
		}

		s.cache.Set(ctx, key, balance, cache.ItemTTL)
		return balance, nil
	})
	if err != nil {
		if !errors.Is(err, leaveerrors.ErrBalanceRecordMissing) {
			s.logger.Error("get leave balance failed", zap.String("employee_id", employeeID), zap.Error(err))
		}
		return BalanceResponse{}, err
	}

	return toBalanceResponse(v.(*leavebalance.LeaveBalance)), nil
}

func (s *service) GetEmployeeLeaves(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	s.logger.Debug("get employee leaves requested", zap.String("employee_id", employeeID))

	eid, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, employeeerrors.ErrEmployeeNotFound
	}

	key := EmployeeLeavesKey(eid.String())
	var cached []LeaveResponse
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		leaves, err := s.repo.FindAllByEmployee(ctx, eid)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(leaves)
		s.cache.Set(ctx, key, resp, cache.ListTTL)
		return resp, nil
	})
	if err != nil {
		s.logger.Error("get employee leaves failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	return v.([]LeaveResponse), nil
}

func (s *service) currentYear() int {
	return s.clock.Now().Year()
}

// invalidate drops every cache entry a leave write can affect.
func (s *service) invalidate(ctx context.Context, employeeID string, year int) {
	s.cache.Del(ctx, EmployeeLeavesKey(employeeID), BalanceKey(employeeID, year))
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, leaveID, eventType string, payload any) error {
	if s.outbox == nil {
		return nil
	}
	event, err := kafka.NewOutboxEvent(contextutil.GetRequestID(ctx), "leave", leaveID, eventType, events.LeaveLifecycleTopic, payload)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, event)
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func toBalanceResponse(b *leavebalance.LeaveBalance) BalanceResponse {
	return BalanceResponse{
		EmployeeID: b.EmployeeID.String(),
		Year:       b.Year,
		Summary:    b.Summary(),
	}
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:         l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format(dateLayout),
		EndDate:    l.EndDate.Format(dateLayout),
		TotalDays:  l.TotalDays,
		Reason:     l.Reason,
		Status:     l.Status,
		Comments:   l.Comments,
		CreatedAt:  l.CreatedAt.UTC().Format(time.RFC3339),
	}
	if l.Employee != nil {
		resp.EmployeeName = l.Employee.Name
	}
	if l.ResolvedBy != nil {
		v := l.ResolvedBy.String()
		resp.ResolvedBy = &v
	}
	if l.Resolver != nil {
		resp.ResolverName = l.Resolver.Name
	}
	if l.ResolvedAt != nil {
		v := l.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
