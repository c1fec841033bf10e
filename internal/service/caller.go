package service

import "github.com/vivesalud/productiva/internal/domain"

// Caller identifies the authenticated user behind a request for audit and
// visibility decisions.
type Caller struct {
	Email string
	Role  domain.Role
	IP    string
}

func (c Caller) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}
