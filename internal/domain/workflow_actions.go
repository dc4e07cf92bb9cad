package domain

import (
	"time"

	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

const (
	ActionTypeCreated       = "CREATED"
	ActionTypeTransition    = "TRANSITION"
	ActionTypeAutoCompleted = "AUTO_COMPLETED"
)

// WorkflowAction is one row of a workflow's audit trail.
type WorkflowAction struct {
	ID         int64
	WorkflowID int64
	Type       string
	FromStatus string // empty for CREATED
	ToStatus   string
	ActorID    int64 // 0 for system actions
	ActorRole  domain.Role
	Text       string
	DateTime   time.Time
}
