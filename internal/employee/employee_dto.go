package employee

type CreateEmployeeRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Department  string `json:"department" binding:"required,min=2,max=50"`
	JoiningDate string `json:"joining_date" binding:"required,datetime=2006-01-02"`
	Role        string `json:"role" binding:"omitempty,oneof=hr employee"`
}

type EmployeeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Department  string `json:"department"`
	JoiningDate string `json:"joining_date"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}
