package leave

import (
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	authMiddleware gin.HandlerFunc,
) {
	leaves := r.Group("/leaves")
	leaves.Use(authMiddleware)
	{
		leaves.POST("/apply", middleware.RBACAuthorize(rbacService, "leave", "apply"), handler.Apply)
		leaves.PATCH("/:id/process", middleware.RBACAuthorize(rbacService, "leave", "process"), handler.Process)
		leaves.GET("/balance/:employeeId", middleware.RBACAuthorize(rbacService, "leave_balance", "read"), handler.GetBalance)
		leaves.GET("/employee/:employeeId", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetEmployeeLeaves)
	}
}
