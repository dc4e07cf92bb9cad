package domain

import (
	"fmt"
	"strings"
)

// WorkflowStatus is one of the eight lifecycle states a workflow can be in.
type WorkflowStatus string

const (
	StatusDraft     WorkflowStatus = "DRAFT"
	StatusSubmitted WorkflowStatus = "SUBMITTED"
	StatusInReview  WorkflowStatus = "IN_REVIEW"
	StatusApproved  WorkflowStatus = "APPROVED"
	StatusRejected  WorkflowStatus = "REJECTED"
	StatusReopened  WorkflowStatus = "REOPENED"
	StatusCompleted WorkflowStatus = "COMPLETED"
	StatusCancelled WorkflowStatus = "CANCELLED"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []WorkflowStatus{
	StatusDraft,
	StatusSubmitted,
	StatusInReview,
	StatusApproved,
	StatusRejected,
	StatusReopened,
	StatusCompleted,
	StatusCancelled,
}

func (s WorkflowStatus) String() string { return string(s) }

// Valid reports whether s is a member of the closed status set.
func (s WorkflowStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseWorkflowStatus matches text case-insensitively against the status names,
// ignoring surrounding whitespace.
func ParseWorkflowStatus(text string) (WorkflowStatus, error) {
	candidate := WorkflowStatus(strings.ToUpper(strings.TrimSpace(text)))
	if !candidate.Valid() {
		return "", fmt.Errorf("unknown workflow status %q", text)
	}
	return candidate, nil
}
