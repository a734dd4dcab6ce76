package leave

import (
	"net/http"

	"go-leave/internal/domain"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	h.logger.Warn("leave request validation failed", zap.String("path", c.FullPath()), zap.Error(err))
	httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// selfOrHR rejects callers that are neither HR nor the employee the request targets.
func (h *Handler) selfOrHR(c *gin.Context, employeeID string, forbidden *apperror.AppError) bool {
	if c.GetString("role") == domain.RoleHR || c.GetString("employee_id") == employeeID {
		return true
	}
	h.writeServiceError(c, forbidden)
	return false
}

func (h *Handler) Apply(c *gin.Context) {
	var req ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}
	h.logger.Debug("http apply leave",
		zap.String("employee_id", req.EmployeeID),
		zap.String("caller_id", c.GetString("employee_id")),
	)

	if !h.selfOrHR(c, req.EmployeeID, leaveerrors.ErrApplyForOthers) {
		return
	}

	resp, err := h.service.Apply(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Process(c *gin.Context) {
	id := c.Param("id")
	var req ProcessLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}
	resolverID := c.GetString("employee_id")
	h.logger.Debug("http process leave",
		zap.String("leave_id", id),
		zap.String("action", req.Action),
		zap.String("resolver_id", resolverID),
	)

	resp, err := h.service.Process(c.Request.Context(), id, resolverID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetBalance(c *gin.Context) {
	employeeID := c.Param("employeeId")
	if !h.selfOrHR(c, employeeID, apperror.ErrForbidden) {
		return
	}

	resp, err := h.service.GetBalance(c.Request.Context(), employeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetEmployeeLeaves(c *gin.Context) {
	employeeID := c.Param("employeeId")
	if !h.selfOrHR(c, employeeID, apperror.ErrForbidden) {
		return
	}

	resp, err := h.service.GetEmployeeLeaves(c.Request.Context(), employeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
