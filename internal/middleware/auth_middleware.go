package middleware

import (
	"strings"

	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/domain"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// TokenParser verifies an access token and returns the caller it identifies.
type TokenParser interface {
	ParseToken(token string) (domain.Identity, error)
}

func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, autherrors.ErrTokenNotFound)
			return
		}

		identity, err := parser.ParseToken(tokenString)
		if err != nil {
			abortWith(c, err)
			return
		}

		c.Set(string(ContextEmployeeID), identity.EmployeeID)
		c.Set(string(ContextRole), identity.Role)

		ctx := contextutil.WithEmployeeID(c.Request.Context(), identity.EmployeeID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortWith(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
	c.Abort()
}
