package rbac

import "go-leave/internal/domain"

type Permission struct {
	Role     string
	Resource string
	Action   string
}

// DefaultPermissions is the built-in grant table. HR inherits every employee grant.
var DefaultPermissions = []Permission{
	{domain.RoleEmployee, "employee", "read"},
	{domain.RoleEmployee, "leave", "apply"},
	{domain.RoleEmployee, "leave", "read"},
	{domain.RoleEmployee, "leave_balance", "read"},

	{domain.RoleHR, "employee", "create"},
	{domain.RoleHR, "employee", "list"},
	{domain.RoleHR, "leave", "process"},
}

// DefaultInheritance maps a role to the role whose grants it also receives.
var DefaultInheritance = map[string]string{
	domain.RoleHR: domain.RoleEmployee,
}
