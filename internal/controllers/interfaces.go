package controllers

import (
	"context"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/RealZimboGuy/approvalflow/internal/engine"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/core"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/models"
)

// LifecycleService is the part of engine.WorkflowService the HTTP layer uses.
type LifecycleService interface {
	Create(ctx context.Context, in engine.NewWorkflow, actor core.Identity) (*pubdomain.Workflow, error)
	List(ctx context.Context, actor core.Identity) ([]pubdomain.Workflow, error)
	Get(ctx context.Context, id int64, actor core.Identity) (*pubdomain.Workflow, error)
	RequestTransition(ctx context.Context, id int64, status string, actor core.Identity) (*pubdomain.Workflow, error)
	History(ctx context.Context, id int64, actor core.Identity) ([]domain.WorkflowAction, error)
	Stats(ctx context.Context, actor core.Identity) (*models.DashboardStats, error)
	Graph() *engine.StatusGraph
}

// SweepRunner is the part of engine.Sweeper the HTTP layer uses.
type SweepRunner interface {
	Sweep(ctx context.Context, trigger string) (engine.SweepResult, error)
	Recent(ctx context.Context, limit int) ([]domain.SweepRun, error)
}
