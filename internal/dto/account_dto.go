package dto

type CreateAccountRequest struct {
	Username string  `json:"username"  validate:"required,min=3,max=50"`
	Email    string  `json:"email"     validate:"required,email,max=100"`
	Password string  `json:"password"  validate:"required,min=8,max=72"`
	FullName string  `json:"full_name" validate:"required,max=100"`
	Phone    *string `json:"phone"     validate:"omitempty,max=20"`
	Role     string  `json:"role"      validate:"required,oneof=sales technician admin super_admin"`
}

type UpdateAccountRequest struct {
	Username *string `json:"username"  validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email"     validate:"omitempty,email,max=100"`
	Password *string `json:"password"  validate:"omitempty,min=8,max=72"`
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	Phone    *string `json:"phone"     validate:"omitempty,max=20"`
	Role     *string `json:"role"      validate:"omitempty,oneof=sales technician admin super_admin"`
	IsActive *bool   `json:"is_active"`
}

type AccountFilter struct {
	Search string `form:"search"`
	Role   string `form:"role"   validate:"omitempty,oneof=sales technician admin super_admin"`
	// EmployeesOnly hides administrator accounts. Set by the service for
	// callers that are not super administrators.
	EmployeesOnly bool `form:"-"`
	Pagination
}

type AccountResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	Phone        *string `json:"phone"`
	Role         string  `json:"role"`
	IsAdmin      bool    `json:"is_admin"`
	IsSuperAdmin bool    `json:"is_super_admin"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at"`
}
