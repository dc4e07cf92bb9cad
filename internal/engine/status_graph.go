package engine

import (
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

// StatusGraph is the fixed set of legal one-hop status changes. It is built once
// and only read afterwards, so a single value can be shared between goroutines.
type StatusGraph struct {
	edges map[domain.WorkflowStatus][]domain.WorkflowStatus
}

// NewStatusGraph returns the lifecycle graph:
//
//	DRAFT     -> SUBMITTED | CANCELLED
//	SUBMITTED -> IN_REVIEW | APPROVED | REJECTED | CANCELLED
//	IN_REVIEW -> APPROVED | REJECTED | CANCELLED
//	APPROVED  -> COMPLETED | REOPENED
//	REJECTED  -> REOPENED
//	REOPENED  -> SUBMITTED | CANCELLED
//
// COMPLETED and CANCELLED have no outgoing edges.
func NewStatusGraph() *StatusGraph {
	return &StatusGraph{edges: map[domain.WorkflowStatus][]domain.WorkflowStatus{
		domain.StatusDraft:     {domain.StatusSubmitted, domain.StatusCancelled},
		domain.StatusSubmitted: {domain.StatusInReview, domain.StatusApproved, domain.StatusRejected, domain.StatusCancelled},
		domain.StatusInReview:  {domain.StatusApproved, domain.StatusRejected, domain.StatusCancelled},
		domain.StatusApproved:  {domain.StatusCompleted, domain.StatusReopened},
		domain.StatusRejected:  {domain.StatusReopened},
		domain.StatusReopened:  {domain.StatusSubmitted, domain.StatusCancelled},
		domain.StatusCompleted: nil,
		domain.StatusCancelled: nil,
	}}
}

func (g *StatusGraph) IsLegalTransition(from, to domain.WorkflowStatus) bool {
	for _, next := range g.edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (g *StatusGraph) IsTerminal(status domain.WorkflowStatus) bool {
	return status == domain.StatusCompleted || status == domain.StatusCancelled
}

// AllowedNext returns a copy so callers cannot modify the graph.
func (g *StatusGraph) AllowedNext(from domain.WorkflowStatus) []domain.WorkflowStatus {
	next := g.edges[from]
	out := make([]domain.WorkflowStatus, len(next))
	copy(out, next)
	return out
}
