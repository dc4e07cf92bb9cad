package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/core"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
	"github.com/robfig/cron/v3"
)

var ErrSweepInProgress = errors.New("auto-completion sweep already in progress")

type SweepResult struct {
	RunID      int64
	Trigger    string
	Started    time.Time
	Finished   time.Time
	Scanned    int
	Candidates int
	Completed  int
	Failed     int
}

// Sweeper completes workflows that have stayed APPROVED for longer than
// staleAfter. It skips authorization but still asks the graph whether
// APPROVED -> COMPLETED is allowed. Only one sweep runs at a time per process.
type Sweeper struct {
	repo       WorkflowRepo
	runs       SweepRunRepo
	graph      *StatusGraph
	audit      AuditSink
	clock      core.Clock
	metrics    *Metrics
	staleAfter time.Duration
	running    sync.Mutex
}

func NewSweeper(repo WorkflowRepo, runs SweepRunRepo, graph *StatusGraph, audit AuditSink, clock core.Clock,
	metrics *Metrics, staleAfter time.Duration) *Sweeper {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Sweeper{
		repo:       repo,
		runs:       runs,
		graph:      graph,
		audit:      audit,
		clock:      clock,
		metrics:    metrics,
		staleAfter: staleAfter,
	}
}

func (s *Sweeper) Recent(ctx context.Context, limit int) ([]domain.SweepRun, error) {
	return s.runs.FindRecent(ctx, limit)
}

// Sweep runs one pass. A call made while another pass is in flight returns
// ErrSweepInProgress without touching anything. Failures on single workflows
// are logged and counted, the pass carries on with the next candidate.
func (s *Sweeper) Sweep(ctx context.Context, trigger string) (SweepResult, error) {
	if !s.running.TryLock() {
		s.metrics.sweepRuns.WithLabelValues("skipped").Inc()
		slog.WarnContext(ctx, "Auto-completion sweep skipped, previous run still active", "trigger", trigger)
		return SweepResult{}, ErrSweepInProgress
	}
	defer s.running.Unlock()

	started := s.clock.Now()
	result := SweepResult{Trigger: trigger, Started: started}
	cutoff := started.Add(-s.staleAfter)

	run := &domain.SweepRun{Trigger: trigger, Started: started}
	if _, err := s.runs.Save(ctx, run); err != nil {
		slog.ErrorContext(ctx, "Failed to record sweep run", "error", err)
	}
	result.RunID = run.ID

	approved, err := s.repo.FindByStatus(ctx, pubdomain.StatusApproved)
	if err != nil {
		s.metrics.sweepRuns.WithLabelValues("failed").Inc()
		s.finish(ctx, run, &result)
		return result, fmt.Errorf("loading approved workflows: %w", err)
	}
	result.Scanned = len(approved)

	for i := range approved {
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "Auto-completion sweep interrupted", "processed", i, "of", len(approved))
			break
		}
		wf := approved[i]
		if wf.Status != pubdomain.StatusApproved || !wf.UpdatedAt.Before(cutoff) {
			continue
		}
		result.Candidates++
		if !s.graph.IsLegalTransition(wf.Status, pubdomain.StatusCompleted) {
			slog.WarnContext(ctx, "Graph does not allow auto-completion", "workflowId", wf.ID, "status", wf.Status)
			continue
		}
		if err := s.complete(ctx, wf); err != nil {
			result.Failed++
			s.metrics.sweepFailures.Inc()
			slog.ErrorContext(ctx, "Failed to auto-complete workflow", "error", err, "workflowId", wf.ID)
			continue
		}
		result.Completed++
		s.metrics.sweepCompleted.Inc()
	}

	s.finish(ctx, run, &result)
	s.metrics.sweepRuns.WithLabelValues("finished").Inc()
	slog.InfoContext(ctx, "Auto-completion sweep finished",
		"trigger", trigger,
		"scanned", result.Scanned,
		"candidates", result.Candidates,
		"completed", result.Completed,
		"failed", result.Failed,
		"duration", result.Finished.Sub(result.Started).String())
	return result, nil
}

func (s *Sweeper) complete(ctx context.Context, wf pubdomain.Workflow) error {
	now := s.clock.Now()
	err := s.repo.UpdateStatus(ctx, pubdomain.StatusChange{
		WorkflowID:      wf.ID,
		ExpectedVersion: wf.Version,
		From:            pubdomain.StatusApproved,
		To:              pubdomain.StatusCompleted,
		At:              now,
	})
	if err != nil {
		return err
	}
	s.audit.Record(TransitionEvent{
		WorkflowID: wf.ID,
		Kind:       domain.ActionTypeAutoCompleted,
		From:       pubdomain.StatusApproved,
		To:         pubdomain.StatusCompleted,
		ActorRole:  pubdomain.RoleSystem,
		At:         now,
		Text:       fmt.Sprintf("auto-completed after %s in APPROVED", s.staleAfter),
	})
	return nil
}

func (s *Sweeper) finish(ctx context.Context, run *domain.SweepRun, result *SweepResult) {
	result.Finished = s.clock.Now()
	s.metrics.sweepDuration.Observe(result.Finished.Sub(result.Started).Seconds())
	if run.ID == 0 {
		return
	}
	run.Finished = sql.NullTime{Time: result.Finished, Valid: true}
	run.Scanned = result.Scanned
	run.Candidates = result.Candidates
	run.Completed = result.Completed
	run.Failed = result.Failed
	if err := s.runs.Finish(context.WithoutCancel(ctx), run); err != nil {
		slog.ErrorContext(ctx, "Failed to record sweep run result", "error", err, "runId", run.ID)
	}
}

// Run schedules Sweep on the cron schedule and blocks until ctx is cancelled,
// then waits for a sweep in flight to return.
func (s *Sweeper) Run(ctx context.Context, schedule string) error {
	logger := cronLogger{log: slog.Default()}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(schedule, func() {
		if _, err := s.Sweep(ctx, domain.SweepTriggerSchedule); err != nil && !errors.Is(err, ErrSweepInProgress) {
			slog.ErrorContext(ctx, "Scheduled sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	c.Start()
	slog.InfoContext(ctx, "Auto-completion sweeper scheduled", "schedule", schedule, "staleAfter", s.staleAfter.String())
	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("Auto-completion sweeper stopped")
	return nil
}

// cronLogger routes robfig/cron's logging through slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
