package workflow

import (
	"fmt"

	"github.com/planstack-io/planstack-engine/pkg/apperrors"
	"github.com/planstack-io/planstack-engine/pkg/models"
)

// Transition is the side-effect descriptor returned by Validate. The
// lifecycle manager persists exactly what it describes, in one
// transaction.
type Transition struct {
	From   models.DocumentStatus
	To     models.DocumentStatus
	Action models.ApprovalAction

	// SetApprover records the acting user as the document's approver and
	// stamps approved_at.
	SetApprover bool
	// ClearApprover resets approver_id and approved_at.
	ClearApprover bool
	// DemoteOfficialSibling demotes a prior official document for the
	// same (project, step) to private in the same transaction, keeping
	// the single-official-per-step invariant.
	DemoteOfficialSibling bool
}

// Validate decides whether the actor may move a document from its
// current status to the target status. It is pure: given the current
// status, the requested status and the actor's capabilities it returns
// the side-effect descriptor, or a typed rejection.
//
// isCreator tells whether the actor created the document; step selects
// the permission matrix row for the approve/reject edges.
func Validate(current, target models.DocumentStatus, step int, actor *models.Actor, isCreator bool) (*Transition, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: missing actor", apperrors.ErrForbidden)
	}
	if !models.IsValidStatus(target) {
		return nil, fmt.Errorf("%w: unknown target status %q", apperrors.ErrInvalidTransition, target)
	}
	if current == target {
		return nil, fmt.Errorf("%w: document is already %s", apperrors.ErrInvalidTransition, current)
	}

	switch {
	case current == models.StatusPrivate && target == models.StatusPendingApproval:
		// request_approval: creator (or admin) submits the draft.
		if !isCreator && !actor.IsAdmin {
			return nil, fmt.Errorf("%w: only the creator may request approval", apperrors.ErrForbidden)
		}
		return &Transition{
			From:          current,
			To:            target,
			Action:        models.ActionRequested,
			ClearApprover: true,
		}, nil

	case current == models.StatusPendingApproval && target == models.StatusOfficial:
		// approve: matrix role for this step, or admin.
		if !CanApprove(step, actor) {
			return nil, fmt.Errorf("%w: role %q may not approve step %d documents", apperrors.ErrForbidden, actor.Role, step)
		}
		return &Transition{
			From:                  current,
			To:                    target,
			Action:                models.ActionApproved,
			SetApprover:           true,
			DemoteOfficialSibling: true,
		}, nil

	case current == models.StatusPendingApproval && target == models.StatusPrivate:
		// reject: same capability as approve. Stored status returns to
		// private; the audit log records the rejection.
		if !CanApprove(step, actor) {
			return nil, fmt.Errorf("%w: role %q may not reject step %d documents", apperrors.ErrForbidden, actor.Role, step)
		}
		return &Transition{
			From:          current,
			To:            target,
			Action:        models.ActionRejected,
			ClearApprover: true,
		}, nil

	case current == models.StatusOfficial && target == models.StatusPrivate:
		// unpublish: admin only, never reachable by ordinary creators.
		if !actor.IsAdmin {
			return nil, fmt.Errorf("%w: only an admin may unpublish an official document", apperrors.ErrForbidden)
		}
		return &Transition{
			From:          current,
			To:            target,
			Action:        models.ActionUnpublished,
			ClearApprover: true,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s -> %s is not a permitted edge", apperrors.ErrInvalidTransition, current, target)
}
