package engine

import (
	"fmt"

	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

// Decision is the outcome of an authorization check. Reason is for logs only.
type Decision struct {
	Allowed bool
	Reason  string
}

// TransitionAuthorizer decides who may request a status change: the creator of
// the workflow, or anyone holding a privileged role. The requested status does
// not influence the decision.
type TransitionAuthorizer struct{}

func NewTransitionAuthorizer() TransitionAuthorizer { return TransitionAuthorizer{} }

func (TransitionAuthorizer) Authorize(requesterID int64, role domain.Role, wf *domain.Workflow, requested domain.WorkflowStatus) Decision {
	if wf.CreatedBy == requesterID {
		return Decision{Allowed: true, Reason: "requester created the workflow"}
	}
	if role.Privileged() {
		return Decision{Allowed: true, Reason: fmt.Sprintf("role %s may change any workflow", role)}
	}
	return Decision{Reason: fmt.Sprintf("user %d with role %s is not the creator of workflow %d", requesterID, role, wf.ID)}
}

// CanView applies the same rule to reads.
func (TransitionAuthorizer) CanView(requesterID int64, role domain.Role, wf *domain.Workflow) bool {
	return wf.CreatedBy == requesterID || role.Privileged()
}
