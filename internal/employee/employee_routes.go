package employee

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
	employees := r.Group("/employees")
	employees.Use(authMiddleware)
	{
		employees.POST("",
			middleware.RBACAuthorize(rbacService, "employee", "create"),
			handler.Create,
		)

		employees.GET("",
			middleware.RBACAuthorize(rbacService, "employee", "list"),
			handler.GetAll,
		)

		employees.GET("/:id",
			middleware.RBACAuthorize(rbacService, "employee", "read"),
			handler.GetByID,
		)
	}
}
