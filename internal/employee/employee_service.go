package employee

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-leave/internal/domain"
	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/events"
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

const (
	DateLayout = "2006-01-02"

	AllEmployeesKey   = "employees:all"
	EmployeeKeyPrefix = "employee:"
)

func EmployeeKey(id string) string {
	return EmployeeKeyPrefix + id
}

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest, creatorRole string) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	// Find returns nil, nil when no employee has id.
	Find(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	balances leavebalance.Repository
	outbox   kafka.OutboxRepository
	cache    *cache.Store
	clock    clockwork.Clock
	sf       *singleflight.Group
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balances leavebalance.Repository,
	store *cache.Store,
	clock clockwork.Clock,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, balances, nil, store, clock, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	balances leavebalance.Repository,
	outboxRepo kafka.OutboxRepository,
	store *cache.Store,
	clock clockwork.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &service{
		db:       db,
		repo:     repo,
		balances: balances,
		outbox:   outboxRepo,
		cache:    store,
		clock:    clock,
		sf:       &singleflight.Group{},
		logger:   l,
	}
}

// Create registers an employee together with a full-quota balance for the current year.
func (s *service) Create(
	ctx context.Context,
	req CreateEmployeeRequest,
	creatorRole string,
) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
		zap.String("creator_role", creatorRole),
		zap.String("creator_id", contextutil.GetEmployeeID(ctx)),
	)

	if creatorRole != domain.RoleHR {
		log.Warn("create employee rejected for non-hr creator", zap.String("creator_role", creatorRole))
		return EmployeeResponse{}, employeeerrors.ErrHROnly
	}

	joiningDate, err := time.Parse(DateLayout, req.JoiningDate)
	if err != nil {
		log.Warn("create employee invalid joining_date", zap.String("joining_date", req.JoiningDate))
		return EmployeeResponse{}, employeeerrors.ErrInvalidJoiningDate
	}
	now := s.clock.Now()
	if joiningDate.After(now) {
		log.Warn("create employee joining_date in future", zap.String("joining_date", req.JoiningDate))
		return EmployeeResponse{}, employeeerrors.ErrJoiningDateInFuture
	}

	role := req.Role
	if role == "" {
		role = domain.RoleEmployee
	}

	empl := &Employee{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Department:  strings.TrimSpace(req.Department),
		JoiningDate: joiningDate,
		Role:        role,
		IsActive:    true,
	}
	balance := leavebalance.NewForYear(empl.ID, now.Year())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, empl); err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, employeeerrors.ErrEmployeeAlreadyExists) {
			log.Warn("create employee duplicate email", zap.String("email", empl.Email))
		} else {
			log.Error("create employee persist failed", zap.Error(err))
		}
		return EmployeeResponse{}, mapped
	}

	if err := s.balances.WithTx(tx).Create(ctx, balance); err != nil {
		log.Error("create employee balance bootstrap failed",
			zap.String("employee_id", empl.ID.String()),
			zap.Int("year", balance.Year),
			zap.Error(err),
		)
		return EmployeeResponse{}, err
	}

	if s.outbox != nil {
		event, err := kafka.NewOutboxEvent(rid, "employee", empl.ID.String(), events.EventEmployeeCreated, events.EmployeeLifecycleTopic,
			events.EmployeeCreatedEvent{
				EventType:   events.EventEmployeeCreated,
				RequestID:   rid,
				EmployeeID:  empl.ID.String(),
				Email:       empl.Email,
				Department:  empl.Department,
				Role:        empl.Role,
				BalanceYear: balance.Year,
				OccurredAt:  now.UTC(),
			})
		if err != nil {
			log.Error("create employee encode event failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			log.Error("create employee outbox persist failed",
				zap.String("employee_id", empl.ID.String()),
				zap.Error(err),
			)
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("create employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.cache.Del(ctx, AllEmployeesKey)

	log.Info("create employee success",
		zap.String("employee_id", empl.ID.String()),
		zap.Int("balance_year", balance.Year),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	s.logger.Debug("get all employees requested")

	var cached []EmployeeResponse
	if s.cache.Get(ctx, AllEmployeesKey, &cached) {
		return cached, nil
	}

	v, err, _ := s.sf.Do(AllEmployeesKey, func() (interface{}, error) {
		empls, err := s.repo.FindAllActive(ctx)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(empls)
		s.cache.Set(ctx, AllEmployeesKey, resp, cache.ListTTL)
		return resp, nil
	})
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return v.([]EmployeeResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	empl, err := s.Find(ctx, id)
	if err != nil {
		return EmployeeResponse{}, err
	}
	if empl == nil {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
	}
	return mapToResponse(*empl), nil
}

func (s *service) Find(ctx context.Context, id string) (*Employee, error) {
	s.logger.Debug("find employee requested", zap.String("employee_id", id))

	employeeID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	key := EmployeeKey(employeeID.String())
	var cached Employee
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		empl, err := s.repo.FindByID(ctx, employeeID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return (*Employee)(nil), nil
		}
		if err != nil {
			return nil, err
		}

		s.cache.Set(ctx, key, empl, cache.ItemTTL)
		return empl, nil
	})
	if err != nil {
		s.logger.Error("find employee failed", zap.String("employee_id", id), zap.Error(err))
		return nil, err
	}

	return v.(*Employee), nil
}

func (s *service) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	s.logger.Debug("find employee by email requested", zap.String("email", email))

	empl, err := s.repo.FindActiveByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("find employee by email failed", zap.Error(err))
		return nil, err
	}
	return empl, nil
}

func mapToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          empl.ID.String(),
		Name:        empl.Name,
		Email:       empl.Email,
		Department:  empl.Department,
		JoiningDate: empl.JoiningDate.Format(DateLayout),
		Role:        empl.Role,
		IsActive:    empl.IsActive,
		CreatedAt:   empl.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
