package models

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalAction is the audited action of a status transition.
type ApprovalAction string

const (
	ActionRequested   ApprovalAction = "requested"
	ActionApproved    ApprovalAction = "approved"
	ActionRejected    ApprovalAction = "rejected"
	ActionUnpublished ApprovalAction = "unpublished"
)

// ValidApprovalActions contains all auditable actions.
var ValidApprovalActions = []ApprovalAction{
	ActionRequested,
	ActionApproved,
	ActionRejected,
	ActionUnpublished,
}

// IsValidApprovalAction checks if the given action is valid.
func IsValidApprovalAction(a ApprovalAction) bool {
	for _, v := range ValidApprovalActions {
		if v == a {
			return true
		}
	}
	return false
}

// ApprovalHistoryEntry is one append-only record of a status transition.
// Entries form a total order per document when sorted by CreatedAt.
type ApprovalHistoryEntry struct {
	ID         uuid.UUID      `json:"id"`
	DocumentID uuid.UUID      `json:"document_id"`
	Action     ApprovalAction `json:"action"`
	ActorID    uuid.UUID      `json:"actor_id"`
	FromStatus DocumentStatus `json:"from_status"`
	ToStatus   DocumentStatus `json:"to_status"`
	CreatedAt  time.Time      `json:"created_at"`
}
