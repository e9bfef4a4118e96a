package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bueroportal/bueroportal/pkg/cerr"
)

// CanAdvance reports whether the completeness predicate of the task's
// current stage holds, i.e. whether the gate would allow moving to the
// next stage. Abschluss is terminal and never advances.
func CanAdvance(t *Task) bool {
	switch t.Status {
	case StatusNeu:
		return strings.TrimSpace(t.RequiredInfo) != "" &&
			strings.TrimSpace(t.RequiredCollaboration) != "" &&
			strings.TrimSpace(t.IdeaCollection) != "" &&
			strings.TrimSpace(t.Scheduling) != ""
	case StatusBearbeitung:
		return len(t.Protocols) > 0 || len(t.MeetingProtocols) > 0
	case StatusReview:
		if strings.TrimSpace(t.InterimReport) == "" || len(t.Approvals) == 0 {
			return false
		}
		for _, a := range t.Approvals {
			if a.Status != ApprovalApproved {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// TransitionAction is the history label for a gated manual transition.
func TransitionAction(next Status) string {
	return fmt.Sprintf("In %s verschieben", next)
}

// Gate enforces the linear task lifecycle. It is the only path that checks
// the completeness predicate; the board's drag-and-drop path and plain
// status patches bypass it on purpose (behavioral parity with the portal
// UI, where only the detail editor's advance button is gated).
type Gate struct {
	store *Store
}

func NewGate(store *Store) *Gate {
	return &Gate{store: store}
}

// Advance moves the task one stage forward. The predicate is re-checked
// against buffer when given (the editor's unsaved state), otherwise
// against the stored task. When leaving Review, finalReport and summary
// are staged from the checked state along with the transition.
func (g *Gate) Advance(ctx context.Context, id string, buffer *Task, changedBy string) (*Task, error) {
	checked := buffer
	if checked == nil {
		stored, err := g.store.Get(id)
		if err != nil {
			return nil, err
		}
		checked = stored
	}

	next, ok := checked.Status.Next()
	if !ok {
		return nil, cerr.NewError(cerr.FailedPrecondition, "Aufgabe ist bereits abgeschlossen", nil)
	}
	if !CanAdvance(checked) {
		return nil, cerr.NewError(cerr.FailedPrecondition,
			fmt.Sprintf("Pflichtfelder für den Status %s sind nicht vollständig", checked.Status), nil)
	}

	patch := Patch{Status: &next}
	if checked.Status == StatusReview {
		patch.FinalReport = &checked.FinalReport
		patch.Summary = &checked.Summary
	}
	return g.store.Update(ctx, id, patch, changedBy, TransitionAction(next))
}

// RequestApproval appends a pending approval entry for the approver. It is
// not a status change, so no history entry is appended.
func (g *Gate) RequestApproval(ctx context.Context, id, approver string) (*Task, error) {
	if strings.TrimSpace(approver) == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "approver is required", nil)
	}
	t, err := g.store.Get(id)
	if err != nil {
		return nil, err
	}
	approvals := append(t.Approvals, Approval{
		Approver: approver,
		Status:   ApprovalPending,
	})
	return g.store.Update(ctx, id, Patch{Approvals: &approvals}, "", "")
}

// DecideApproval resolves the first pending approval of the approver.
// Multiple pending requests for the same approver are not disambiguated
// beyond first match.
func (g *Gate) DecideApproval(ctx context.Context, id, approver string, approved bool, comment string) (*Task, error) {
	t, err := g.store.Get(id)
	if err != nil {
		return nil, err
	}
	approvals := append([]Approval(nil), t.Approvals...)
	found := false
	for i := range approvals {
		if approvals[i].Approver == approver && approvals[i].Status == ApprovalPending {
			now := time.Now()
			approvals[i].Date = &now
			approvals[i].Comment = comment
			if approved {
				approvals[i].Status = ApprovalApproved
			} else {
				approvals[i].Status = ApprovalRejected
			}
			found = true
			break
		}
	}
	if !found {
		return nil, cerr.NewError(cerr.NotFound, "no pending approval for this approver", nil)
	}
	return g.store.Update(ctx, id, Patch{Approvals: &approvals}, "", "")
}
