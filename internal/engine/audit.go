package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

// TransitionEvent is the audit fact emitted for every status change.
type TransitionEvent struct {
	WorkflowID int64
	Kind       string
	From       pubdomain.WorkflowStatus
	To         pubdomain.WorkflowStatus
	ActorID    int64
	ActorRole  pubdomain.Role
	At         time.Time
	Text       string
}

// AuditSink receives change facts. Record must not block the caller.
type AuditSink interface {
	Record(ev TransitionEvent)
}

// AuditRecorder buffers events and writes them to the workflow_actions table
// from a single background goroutine started with Run.
type AuditRecorder struct {
	repo    WorkflowActionRepo
	events  chan TransitionEvent
	metrics *Metrics
}

func NewAuditRecorder(repo WorkflowActionRepo, bufferSize int, metrics *Metrics) *AuditRecorder {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &AuditRecorder{
		repo:    repo,
		events:  make(chan TransitionEvent, bufferSize),
		metrics: metrics,
	}
}

// Record enqueues ev, dropping it with a warning when the buffer is full.
func (r *AuditRecorder) Record(ev TransitionEvent) {
	select {
	case r.events <- ev:
	default:
		r.metrics.auditEventsDrop.Inc()
		slog.Warn("Audit buffer full, dropping event", "workflowId", ev.WorkflowID, "kind", ev.Kind, "to", ev.To)
	}
}

// Run persists events until ctx is cancelled, then drains whatever is still buffered.
func (r *AuditRecorder) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Audit recorder started", "buffer", cap(r.events))
	for {
		select {
		case <-ctx.Done():
			r.drain(context.WithoutCancel(ctx))
			slog.Info("Audit recorder stopped")
			return nil
		case ev := <-r.events:
			r.store(ctx, ev)
		}
	}
}

func (r *AuditRecorder) drain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for {
		select {
		case ev := <-r.events:
			r.store(ctx, ev)
		default:
			return
		}
	}
}

func (r *AuditRecorder) store(ctx context.Context, ev TransitionEvent) {
	action := &domain.WorkflowAction{
		WorkflowID: ev.WorkflowID,
		Type:       ev.Kind,
		FromStatus: string(ev.From),
		ToStatus:   string(ev.To),
		ActorID:    ev.ActorID,
		ActorRole:  ev.ActorRole,
		Text:       ev.Text,
		DateTime:   ev.At,
	}
	if _, err := r.repo.Save(ctx, action); err != nil {
		slog.ErrorContext(ctx, "Failed to store audit event", "error", err, "workflowId", ev.WorkflowID, "kind", ev.Kind)
		return
	}
	r.metrics.auditEventsStored.Inc()
}
