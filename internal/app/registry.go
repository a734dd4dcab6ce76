package app

import (
	"go-leave/internal/auth"
	"go-leave/internal/config"
	"go-leave/internal/employee"
	"go-leave/internal/leave"
	"go-leave/internal/leavebalance"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"
	"go-leave/internal/rbac/infra"
	"go-leave/internal/shared/cache"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	conn *Infra,
	logger *zap.Logger,
) error {
	clock := clockwork.NewRealClock()
	store := cache.New(conn.Redis, logger)

	// --- Repositories ---
	employeeRepo := employee.NewRepository(conn.GormDB)
	balanceRepo := leavebalance.NewRepository(conn.GormDB)
	leaveRepo := leave.NewRepository(conn.GormDB)
	outboxRepo := kafka.NewOutboxRepository(conn.SQLDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer, rbac.DefaultPermissions, rbac.DefaultInheritance, logger)
	if err != nil {
		return err
	}

	// --- Services ---
	employeeService := employee.NewServiceWithOutbox(conn.SQLDB, employeeRepo, balanceRepo, outboxRepo, store, clock, logger)
	leaveService := leave.NewServiceWithOutbox(conn.SQLDB, leaveRepo, balanceRepo, employeeService, outboxRepo, store, clock, logger)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL, clock)
	authService := auth.NewService(tokens, employeeService, logger)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	authHandler := auth.NewHandler(authService, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)

	authMiddleware := middleware.AuthMiddleware(tokens)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, authMiddleware)
		employee.RegisterRoutes(api, employeeHandler, rbacService, authMiddleware)
		leave.RegisterRoutes(api, leaveHandler, rbacService, authMiddleware)
		rbac.RegisterRoutes(api, rbacHandler, authMiddleware)
	}

	return nil
}
