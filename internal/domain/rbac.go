package domain

const (
	RoleHR       = "hr"
	RoleEmployee = "employee"
)

// EnforceRequest asks whether Role may perform Action on Resource.
type EnforceRequest struct {
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role" binding:"required"`
	Resource   string `json:"resource" binding:"required"`
	Action     string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

// Identity is the verified caller carried by an access token.
type Identity struct {
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
}
