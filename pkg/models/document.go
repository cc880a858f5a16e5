package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planstack-io/planstack-engine/pkg/apperrors"
)

// ============================================================================
// Document Status
// ============================================================================

// DocumentStatus represents the lifecycle status of a planning document.
type DocumentStatus string

const (
	StatusPrivate         DocumentStatus = "private"
	StatusPendingApproval DocumentStatus = "pending_approval"
	StatusOfficial        DocumentStatus = "official"
)

// ValidStatuses contains all statuses a document can rest in. A rejection
// is recorded in the approval history but the stored status returns to
// private, so "rejected" is not a resting status.
var ValidStatuses = []DocumentStatus{
	StatusPrivate,
	StatusPendingApproval,
	StatusOfficial,
}

// IsValidStatus checks if the given status is a valid resting status.
func IsValidStatus(s DocumentStatus) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ============================================================================
// Workflow Steps
// ============================================================================

// Workflow step bounds. Every project moves through nine fixed planning
// phases; documents are always attached to exactly one of them.
const (
	MinWorkflowStep = 1
	MaxWorkflowStep = 9
)

// IsValidWorkflowStep checks if step is within the nine-phase workflow.
func IsValidWorkflowStep(step int) bool {
	return step >= MinWorkflowStep && step <= MaxWorkflowStep
}

// ============================================================================
// Planning Document
// ============================================================================

// Content limits enforced on create and save.
const (
	MaxTitleLength   = 200
	MaxContentLength = 100 * 1024
)

// PlanningDocument is a draft or official planning artifact for one
// workflow step of a project.
type PlanningDocument struct {
	ID         uuid.UUID      `json:"id"`
	ProjectID  uuid.UUID      `json:"project_id"`
	Step       int            `json:"step"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Status     DocumentStatus `json:"status"`
	Version    int            `json:"version"`
	CreatorID  uuid.UUID      `json:"creator_id"`
	ApproverID *uuid.UUID     `json:"approver_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	ApprovedAt *time.Time     `json:"approved_at,omitempty"`
}

// IsOfficial returns true if the document is the team-official artifact
// for its (project, step).
func (d *PlanningDocument) IsOfficial() bool {
	return d.Status == StatusOfficial
}

// IsEditableBy reports whether the actor may mutate the document's
// content. Official documents are read-only outside the admin unpublish
// path.
func (d *PlanningDocument) IsEditableBy(actor *Actor) bool {
	if actor == nil || d.Status == StatusOfficial {
		return false
	}
	return actor.IsAdmin || actor.UserID == d.CreatorID
}

// ValidateTitleAndContent checks the size limits shared by create and
// save. Returns a wrapped apperrors.ErrValidation on violation.
func ValidateTitleAndContent(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title must not be empty", apperrors.ErrValidation)
	}
	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", apperrors.ErrValidation, MaxTitleLength)
	}
	if len(content) > MaxContentLength {
		return fmt.Errorf("%w: content exceeds %d bytes", apperrors.ErrValidation, MaxContentLength)
	}
	return nil
}
