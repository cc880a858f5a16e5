// Package workflow holds the pure decision logic of the document
// lifecycle: the per-step approval permission matrix and the status
// transition validator. Nothing in this package performs I/O.
package workflow

import (
	"github.com/planstack-io/planstack-engine/pkg/models"
)

// approverRoles maps each of the nine workflow steps to the project
// roles allowed to approve or reject documents at that step. The map is
// static configuration; every step must be present.
var approverRoles = map[int][]string{
	1: {models.RoleServicePlanning},
	2: {models.RoleServicePlanning},
	3: {models.RoleServicePlanning},
	4: {models.RoleUIUXPlanning},
	5: {models.RoleDeveloper},
	6: {models.RoleServicePlanning},
	7: {models.RoleServicePlanning},
	8: {models.RoleServicePlanning},
	9: {models.RoleContentPlanning, models.RoleServicePlanning},
}

// ApproverRoles returns the roles allowed to approve at the given step.
// Returns nil for steps outside the nine-phase workflow.
func ApproverRoles(step int) []string {
	roles, ok := approverRoles[step]
	if !ok {
		return nil
	}
	out := make([]string, len(roles))
	copy(out, roles)
	return out
}

// CanApprove reports whether the actor may approve or reject documents
// at the given workflow step. Admin bypasses the matrix unconditionally.
func CanApprove(step int, actor *models.Actor) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin {
		return true
	}
	for _, role := range approverRoles[step] {
		if actor.Role == role {
			return true
		}
	}
	return false
}
