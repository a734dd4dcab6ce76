package app

import (
	"context"

	"go-leave/internal/auth"
	"go-leave/internal/bootstrap"
	"go-leave/internal/config"
	"go-leave/internal/domain"
	"go-leave/internal/employee"
	"go-leave/internal/leavebalance"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/cache"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Admin backs the operator CLI. It reuses the API services so seeded records go
// through the same validation, transactions and outbox as HTTP requests.
type Admin struct {
	employees employee.Service
	auth      auth.Service
	audit     bootstrap.AuditLogger
}

func NewAdmin(cfg *config.Config, conn *Infra, logger *zap.Logger) *Admin {
	clock := clockwork.NewRealClock()
	store := cache.New(conn.Redis, logger)

	employees := employee.NewServiceWithOutbox(
		conn.SQLDB,
		employee.NewRepository(conn.GormDB),
		leavebalance.NewRepository(conn.GormDB),
		kafka.NewOutboxRepository(conn.SQLDB),
		store,
		clock,
		logger,
	)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL, clock)

	return &Admin{
		employees: employees,
		auth:      auth.NewService(tokens, employees, logger),
		audit:     bootstrap.NewZapAuditLogger(logger, clock),
	}
}

// SeedHR creates an HR employee without an authenticated caller.
func (a *Admin) SeedHR(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	req.Role = domain.RoleHR
	resp, err := a.employees.Create(ctx, req, domain.RoleHR)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	a.audit.Log(ctx, auditSeed("SEED_HR", resp.ID))
	return resp, nil
}

func (a *Admin) IssueToken(ctx context.Context, employeeID string) (auth.TokenResponse, error) {
	resp, err := a.auth.IssueToken(ctx, employeeID)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	a.audit.Log(ctx, auditSeed("ISSUE_TOKEN", employeeID))
	return resp, nil
}

func auditSeed(action, employeeID string) bootstrap.AuditLog {
	return bootstrap.AuditLog{
		Action:  action,
		Message: "operator CLI",
		Meta:    map[string]any{"employee_id": employeeID},
	}
}
