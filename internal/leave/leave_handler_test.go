package leave_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-leave/internal/domain"
	"go-leave/internal/leave"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeLeaveService struct {
	ApplyFn             func(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveResponse, error)
	ProcessFn           func(ctx context.Context, id, resolverID string, req leave.ProcessLeaveRequest) (leave.LeaveResponse, error)
	GetBalanceFn        func(ctx context.Context, employeeID string) (leave.BalanceResponse, error)
	GetEmployeeLeavesFn func(ctx context.Context, employeeID string) ([]leave.LeaveResponse, error)
}

func (f *fakeLeaveService) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveResponse, error) {
	return f.ApplyFn(ctx, req)
}
func (f *fakeLeaveService) Process(ctx context.Context, id, resolverID string, req leave.ProcessLeaveRequest) (leave.LeaveResponse, error) {
	return f.ProcessFn(ctx, id, resolverID, req)
}
func (f *fakeLeaveService) GetBalance(ctx context.Context, employeeID string) (leave.BalanceResponse, error) {
	return f.GetBalanceFn(ctx, employeeID)
}
func (f *fakeLeaveService) GetEmployeeLeaves(ctx context.Context, employeeID string) ([]leave.LeaveResponse, error) {
	return f.GetEmployeeLeavesFn(ctx, employeeID)
}

func init() {
	gin.SetMode(gin.TestMode)
	apperror.Init()
}

func newJSONContext(method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env response.ApiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Ok)
	body, _ := env.Error.(map[string]any)
	return body
}

func applyBody(employeeID string) string {
	return `{"employee_id":"` + employeeID + `","leave_type":"casual","start_date":"2024-03-04","end_date":"2024-03-08","reason":"family trip"}`
}

func TestLeaveHandler_Apply(t *testing.T) {
	self := uuid.NewString()

	t.Run("employee applies for self", func(t *testing.T) {
		svc := &fakeLeaveService{
			ApplyFn: func(_ context.Context, req leave.ApplyLeaveRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, self, req.EmployeeID)
				return leave.LeaveResponse{ID: uuid.NewString(), EmployeeID: self, Status: leave.StatusPending, TotalDays: 5}, nil
			},
		}
		c, w := newJSONContext(http.MethodPost, "/api/v1/leaves/apply", applyBody(self))
		c.Set("employee_id", self)
		c.Set("role", domain.RoleEmployee)

		leave.NewHandler(svc).Apply(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"pending"`)
	})

	t.Run("employee cannot apply for others", func(t *testing.T) {
		c, w := newJSONContext(http.MethodPost, "/api/v1/leaves/apply", applyBody(uuid.NewString()))
		c.Set("employee_id", self)
		c.Set("role", domain.RoleEmployee)

		leave.NewHandler(&fakeLeaveService{}).Apply(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, apperror.CodeForbidden, errorBody(t, w)["code"])
	})

	t.Run("hr may apply on behalf", func(t *testing.T) {
		called := false
		svc := &fakeLeaveService{
			ApplyFn: func(context.Context, leave.ApplyLeaveRequest) (leave.LeaveResponse, error) {
				called = true
				return leave.LeaveResponse{}, nil
			},
		}
		c, w := newJSONContext(http.MethodPost, "/api/v1/leaves/apply", applyBody(uuid.NewString()))
		c.Set("employee_id", self)
		c.Set("role", domain.RoleHR)

		leave.NewHandler(svc).Apply(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, called)
	})

	t.Run("unknown leave type fails binding", func(t *testing.T) {
		body := strings.Replace(applyBody(self), "casual", "annual", 1)
		c, w := newJSONContext(http.MethodPost, "/api/v1/leaves/apply", body)
		c.Set("employee_id", self)

		leave.NewHandler(&fakeLeaveService{}).Apply(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeValidation, errorBody(t, w)["code"])
	})

	t.Run("insufficient balance keeps message and details", func(t *testing.T) {
		svc := &fakeLeaveService{
			ApplyFn: func(context.Context, leave.ApplyLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, &leaveerrors.InsufficientBalanceError{LeaveType: "casual", Available: 2}
			},
		}
		c, w := newJSONContext(http.MethodPost, "/api/v1/leaves/apply", applyBody(self))
		c.Set("employee_id", self)

		leave.NewHandler(svc).Apply(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := errorBody(t, w)
		assert.Equal(t, "Insufficient casual leave balance. Available: 2 days", body["message"])
	})

	t.Run("overlap is a conflict", func(t *testing.T) {
		svc := &fakeLeaveService{
			ApplyFn: func(context.Context, leave.ApplyLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrLeaveOverlap
			},
		}
		c, w := newJSONContext(http.MethodPost, "/api/v1/leaves/apply", applyBody(self))
		c.Set("employee_id", self)

		leave.NewHandler(svc).Apply(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestLeaveHandler_Process(t *testing.T) {
	hr := uuid.NewString()
	leaveID := uuid.NewString()

	t.Run("resolver comes from the token", func(t *testing.T) {
		svc := &fakeLeaveService{
			ProcessFn: func(_ context.Context, id, resolverID string, req leave.ProcessLeaveRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, leaveID, id)
				assert.Equal(t, hr, resolverID)
				assert.Equal(t, leave.ActionApprove, req.Action)
				return leave.LeaveResponse{ID: id, Status: leave.StatusApproved, ResolvedBy: &resolverID}, nil
			},
		}
		c, w := newJSONContext(http.MethodPatch, "/api/v1/leaves/"+leaveID+"/process", `{"action":"approve","comments":"enjoy"}`)
		c.Params = gin.Params{{Key: "id", Value: leaveID}}
		c.Set("employee_id", hr)
		c.Set("role", domain.RoleHR)

		leave.NewHandler(svc).Process(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"approved"`)
	})

	t.Run("invalid action fails binding", func(t *testing.T) {
		c, w := newJSONContext(http.MethodPatch, "/api/v1/leaves/"+leaveID+"/process", `{"action":"cancel"}`)
		c.Params = gin.Params{{Key: "id", Value: leaveID}}

		leave.NewHandler(&fakeLeaveService{}).Process(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("already processed", func(t *testing.T) {
		svc := &fakeLeaveService{
			ProcessFn: func(context.Context, string, string, leave.ProcessLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrLeaveAlreadyProcessed
			},
		}
		c, w := newJSONContext(http.MethodPatch, "/api/v1/leaves/"+leaveID+"/process", `{"action":"reject"}`)
		c.Params = gin.Params{{Key: "id", Value: leaveID}}
		c.Set("employee_id", hr)

		leave.NewHandler(svc).Process(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, apperror.CodeInvalidState, errorBody(t, w)["code"])
	})
}

func TestLeaveHandler_GetBalance(t *testing.T) {
	self := uuid.NewString()
	svc := &fakeLeaveService{
		GetBalanceFn: func(_ context.Context, employeeID string) (leave.BalanceResponse, error) {
			return leave.BalanceResponse{EmployeeID: employeeID, Year: 2024}, nil
		},
	}

	t.Run("own balance", func(t *testing.T) {
		c, w := newJSONContext(http.MethodGet, "/api/v1/leaves/balance/"+self, "")
		c.Params = gin.Params{{Key: "employeeId", Value: self}}
		c.Set("employee_id", self)
		c.Set("role", domain.RoleEmployee)

		leave.NewHandler(svc).GetBalance(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"casual_leave"`)
	})

	t.Run("someone else's balance", func(t *testing.T) {
		other := uuid.NewString()
		c, w := newJSONContext(http.MethodGet, "/api/v1/leaves/balance/"+other, "")
		c.Params = gin.Params{{Key: "employeeId", Value: other}}
		c.Set("employee_id", self)
		c.Set("role", domain.RoleEmployee)

		leave.NewHandler(svc).GetBalance(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing record", func(t *testing.T) {
		missing := &fakeLeaveService{
			GetBalanceFn: func(context.Context, string) (leave.BalanceResponse, error) {
				return leave.BalanceResponse{}, leaveerrors.ErrBalanceRecordMissing
			},
		}
		c, w := newJSONContext(http.MethodGet, "/api/v1/leaves/balance/"+self, "")
		c.Params = gin.Params{{Key: "employeeId", Value: self}}
		c.Set("role", domain.RoleHR)

		leave.NewHandler(missing).GetBalance(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLeaveHandler_GetEmployeeLeaves(t *testing.T) {
	target := uuid.NewString()
	svc := &fakeLeaveService{
		GetEmployeeLeavesFn: func(_ context.Context, employeeID string) ([]leave.LeaveResponse, error) {
			return []leave.LeaveResponse{{EmployeeID: employeeID, Status: leave.StatusPending}}, nil
		},
	}

	c, w := newJSONContext(http.MethodGet, "/api/v1/leaves/employee/"+target, "")
	c.Params = gin.Params{{Key: "employeeId", Value: target}}
	c.Set("employee_id", uuid.NewString())
	c.Set("role", domain.RoleHR)

	leave.NewHandler(svc).GetEmployeeLeaves(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), target)
}
