package auth

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   string       `json:"expires_at"`
	Employee    AuthResponse `json:"employee"`
}

type AuthResponse struct {
	EmployeeID string `json:"employee_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Role       string `json:"role"`
}
