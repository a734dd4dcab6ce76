package middleware

import (
	"go-leave/internal/domain"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ContextKey string

const (
	ContextEmployeeID ContextKey = "employee_id"
	ContextRole       ContextKey = "role"
)

// RBACService is satisfied by anything that can answer an EnforceRequest.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(string(ContextRole))
		if role == "" {
			abortWith(c, apperror.ErrUnauthorized)
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			EmployeeID: c.GetString(string(ContextEmployeeID)),
			Role:       role,
			Resource:   resource,
			Action:     action,
		})
		if err != nil {
			zap.L().Named("middleware.rbac").Error("enforce failed",
				zap.String("role", role),
				zap.String("permission", resource+":"+action),
				zap.Error(err),
			)
			abortWith(c, err)
			return
		}

		if !allowed {
			response.Error(c, apperror.ErrForbidden.HTTPStatus, apperror.ErrForbidden.Code, apperror.ErrForbidden.Message,
				map[string]string{"required": resource + ":" + action})
			c.Abort()
			return
		}
		c.Next()
	}
}
