package auth

import (
	"context"
	"time"

	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/employee"
	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/shared/contextutil"

	"go.uber.org/zap"
)

// EmployeeFinder resolves employees; Find returns nil, nil for unknown ids.
type EmployeeFinder interface {
	Find(ctx context.Context, id string) (*employee.Employee, error)
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	// IssueToken mints an access token for an active employee using the role on record.
	IssueToken(ctx context.Context, employeeID string) (TokenResponse, error)
	GetMe(ctx context.Context, employeeID string) (AuthResponse, error)
}

type service struct {
	tokens    *TokenManager
	employees EmployeeFinder
	logger    *zap.Logger
}

func NewService(tokens *TokenManager, employees EmployeeFinder, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{tokens: tokens, employees: employees, logger: l}
}

func (s *service) IssueToken(ctx context.Context, employeeID string) (TokenResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	empl, err := s.activeEmployee(ctx, employeeID)
	if err != nil {
		return TokenResponse{}, err
	}

	token, expiresAt, err := s.tokens.Issue(empl.ID.String(), empl.Role)
	if err != nil {
		log.Error("issue token failed", zap.String("employee_id", employeeID), zap.Error(err))
		return TokenResponse{}, autherrors.ErrTokenGenerationFailed
	}

	log.Info("token issued", zap.String("employee_id", employeeID), zap.String("role", empl.Role))
	return TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
		Employee:    toAuthResponse(empl),
	}, nil
}

func (s *service) GetMe(ctx context.Context, employeeID string) (AuthResponse, error) {
	empl, err := s.activeEmployee(ctx, employeeID)
	if err != nil {
		return AuthResponse{}, err
	}
	return toAuthResponse(empl), nil
}

func (s *service) activeEmployee(ctx context.Context, employeeID string) (*employee.Employee, error) {
	empl, err := s.employees.Find(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if empl == nil {
		return nil, employeeerrors.ErrEmployeeNotFound
	}
	if !empl.IsActive {
		return nil, autherrors.ErrInactiveEmployee
	}
	return empl, nil
}

func toAuthResponse(e *employee.Employee) AuthResponse {
	return AuthResponse{
		EmployeeID: e.ID.String(),
		Email:      e.Email,
		Name:       e.Name,
		Department: e.Department,
		Role:       e.Role,
	}
}
