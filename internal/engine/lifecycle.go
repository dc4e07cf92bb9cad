package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/core"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

type NewWorkflow struct {
	Title       string
	Description string
	Priority    string
	Category    string
}

// WorkflowService is the interactive entry point of the lifecycle engine: it
// creates workflows, answers role filtered reads and applies status changes.
type WorkflowService struct {
	repo       WorkflowRepo
	actions    WorkflowActionRepo
	graph      *StatusGraph
	authorizer TransitionAuthorizer
	audit      AuditSink
	clock      core.Clock
	metrics    *Metrics
	strict     bool
}

// NewWorkflowService wires the service. With strict set, status changes that are
// not edges of the graph are rejected as ILLEGAL_TRANSITION.
func NewWorkflowService(repo WorkflowRepo, actions WorkflowActionRepo, graph *StatusGraph, audit AuditSink,
	clock core.Clock, metrics *Metrics, strict bool) *WorkflowService {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &WorkflowService{
		repo:       repo,
		actions:    actions,
		graph:      graph,
		authorizer: NewTransitionAuthorizer(),
		audit:      audit,
		clock:      clock,
		metrics:    metrics,
		strict:     strict,
	}
}

func (s *WorkflowService) Graph() *StatusGraph { return s.graph }

func (s *WorkflowService) Create(ctx context.Context, in NewWorkflow, actor core.Identity) (*pubdomain.Workflow, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, newError(KindBadRequest, nil, "title is required")
	}
	now := s.clock.Now()
	wf := &pubdomain.Workflow{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Priority:    in.Priority,
		Category:    in.Category,
		Status:      pubdomain.StatusDraft,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
	if _, err := s.repo.Save(ctx, wf); err != nil {
		slog.ErrorContext(ctx, "Failed to create workflow", "error", err, "userId", actor.UserID)
		return nil, errStoreUnavailable(err)
	}
	s.metrics.workflowsCreated.Inc()
	s.audit.Record(TransitionEvent{
		WorkflowID: wf.ID,
		Kind:       domain.ActionTypeCreated,
		To:         wf.Status,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		At:         now,
		Text:       "workflow created",
	})
	slog.InfoContext(ctx, "Workflow created", "workflowId", wf.ID, "userId", actor.UserID)
	return wf, nil
}

// List returns every workflow to privileged roles and only their own to everyone else, ordered by id.
func (s *WorkflowService) List(ctx context.Context, actor core.Identity) ([]pubdomain.Workflow, error) {
	var (
		workflows []pubdomain.Workflow
		err       error
	)
	if actor.Role.Privileged() {
		workflows, err = s.repo.FindAll(ctx)
	} else {
		workflows, err = s.repo.FindByCreator(ctx, actor.UserID)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list workflows", "error", err, "userId", actor.UserID)
		return nil, errStoreUnavailable(err)
	}
	return workflows, nil
}

func (s *WorkflowService) Get(ctx context.Context, id int64, actor core.Identity) (*pubdomain.Workflow, error) {
	wf, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authorizer.CanView(actor.UserID, actor.Role, wf) {
		slog.InfoContext(ctx, "Workflow read denied", "workflowId", id, "userId", actor.UserID, "role", actor.Role)
		return nil, errForbidden()
	}
	return wf, nil
}

// History returns the audit trail of a workflow, oldest first.
func (s *WorkflowService) History(ctx context.Context, id int64, actor core.Identity) ([]domain.WorkflowAction, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}
	actions, err := s.actions.FindAllByWorkflowID(ctx, id)
	if err != nil {
		return nil, errStoreUnavailable(err)
	}
	return actions, nil
}

// RequestTransition moves a workflow to the status named by statusText. The
// checks run in a fixed order: existence, status parse, authorization, graph,
// then the compare-and-swap write. Any failure leaves the stored workflow untouched.
func (s *WorkflowService) RequestTransition(ctx context.Context, id int64, statusText string, actor core.Identity) (*pubdomain.Workflow, error) {
	wf, err := s.requestTransition(ctx, id, statusText, actor)
	s.metrics.transition(KindOf(err))
	return wf, err
}

func (s *WorkflowService) requestTransition(ctx context.Context, id int64, statusText string, actor core.Identity) (*pubdomain.Workflow, error) {
	wf, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	requested, err := pubdomain.ParseWorkflowStatus(statusText)
	if err != nil {
		return nil, newError(KindInvalidStatus, err, "invalid status %q, expected one of %s", statusText, joinStatuses(pubdomain.AllStatuses))
	}

	decision := s.authorizer.Authorize(actor.UserID, actor.Role, wf, requested)
	if !decision.Allowed {
		slog.InfoContext(ctx, "Transition denied", "workflowId", id, "userId", actor.UserID, "reason", decision.Reason)
		return nil, errForbidden()
	}

	if s.strict && !s.graph.IsLegalTransition(wf.Status, requested) {
		if s.graph.IsTerminal(wf.Status) {
			return nil, newError(KindIllegalTransition, nil, "workflow is %s which is terminal, no further changes are allowed", wf.Status)
		}
		return nil, newError(KindIllegalTransition, nil, "cannot move workflow from %s to %s, allowed next statuses: %s",
			wf.Status, requested, joinStatuses(s.graph.AllowedNext(wf.Status)))
	}

	now := s.clock.Now()
	change := pubdomain.StatusChange{
		WorkflowID:      wf.ID,
		ExpectedVersion: wf.Version,
		From:            wf.Status,
		To:              requested,
		At:              now,
	}
	if err := s.repo.UpdateStatus(ctx, change); err != nil {
		return nil, s.storeError(ctx, id, err)
	}

	from := wf.Status
	wf.Status = requested
	wf.UpdatedAt = now
	wf.Version++

	s.audit.Record(TransitionEvent{
		WorkflowID: wf.ID,
		Kind:       domain.ActionTypeTransition,
		From:       from,
		To:         requested,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		At:         now,
		Text:       fmt.Sprintf("%s changed status from %s to %s", actor.Username, from, requested),
	})
	slog.InfoContext(ctx, "Workflow status changed", "workflowId", wf.ID, "from", from, "to", requested, "userId", actor.UserID)
	return wf, nil
}

func (s *WorkflowService) load(ctx context.Context, id int64) (*pubdomain.Workflow, error) {
	wf, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, id, err)
	}
	return wf, nil
}

func (s *WorkflowService) storeError(ctx context.Context, id int64, err error) error {
	switch {
	case errors.Is(err, pubdomain.ErrNotFound):
		return errNotFound(id, err)
	case errors.Is(err, pubdomain.ErrConflict):
		slog.InfoContext(ctx, "Concurrent status change lost", "workflowId", id)
		return newError(KindConflict, err, "workflow %d was changed concurrently, re-read it and retry", id)
	}
	slog.ErrorContext(ctx, "Workflow store failure", "error", err, "workflowId", id)
	return errStoreUnavailable(err)
}

func joinStatuses(statuses []pubdomain.WorkflowStatus) string {
	if len(statuses) == 0 {
		return "none"
	}
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}
