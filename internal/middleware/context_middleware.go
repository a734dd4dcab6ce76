package middleware

import (
	"go-leave/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"
	// maxRequestIDLen matches outbox_events.request_id.
	maxRequestIDLen = 64
)

// requestID keeps a caller-supplied id only when it fits the outbox column and is
// visible ASCII; anything else is replaced with a fresh uuid.
func requestID(header string) string {
	if header == "" || len(header) > maxRequestIDLen {
		return uuid.New().String()
	}
	for i := 0; i < len(header); i++ {
		if header[i] < '!' || header[i] > '~' {
			return uuid.New().String()
		}
	}
	return header
}

// ContextLogger attaches a request id and a request-scoped logger to the request
// context so services can log without knowing about gin.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := requestID(c.GetHeader(RequestIDHeader))
		c.Header(RequestIDHeader, rid)
		c.Set("request_id", rid)

		reqLogger := logger.With(
			zap.String("request_id", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)

		ctx := c.Request.Context()
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		// The employee is only known once auth has run further down the chain.
		reqLogger.Debug("request completed",
			zap.Int("status", c.Writer.Status()),
			zap.String("employee_id", c.GetString(string(ContextEmployeeID))),
		)
	}
}
