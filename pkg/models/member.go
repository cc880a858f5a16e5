package models

import "github.com/google/uuid"

// Project role constants. Roles are supplied by the external identity
// provider; the engine never computes them.
const (
	RoleAdmin           = "admin"
	RoleServicePlanning = "service_planning"
	RoleUIUXPlanning    = "uiux_planning"
	RoleDeveloper       = "developer"
	RoleContentPlanning = "content_planning"
)

// ValidRoles contains all valid project role values.
var ValidRoles = []string{
	RoleAdmin,
	RoleServicePlanning,
	RoleUIUXPlanning,
	RoleDeveloper,
	RoleContentPlanning,
}

// IsValidRole checks if the given role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Actor is the capability input for every permission decision: who is
// acting, with which project role, and whether they hold admin rights.
type Actor struct {
	UserID  uuid.UUID `json:"user_id"`
	Role    string    `json:"role"`
	IsAdmin bool      `json:"is_admin"`
}
