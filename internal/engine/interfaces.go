package engine

import (
	"context"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

// WorkflowRepo defines the interface for workflow persistence, matching repository.WorkflowRepository.
type WorkflowRepo interface {
	Save(ctx context.Context, wf *pubdomain.Workflow) (int64, error)
	FindByID(ctx context.Context, id int64) (*pubdomain.Workflow, error)
	FindAll(ctx context.Context) ([]pubdomain.Workflow, error)
	FindByCreator(ctx context.Context, userID int64) ([]pubdomain.Workflow, error)
	FindByStatus(ctx context.Context, status pubdomain.WorkflowStatus) ([]pubdomain.Workflow, error)
	UpdateStatus(ctx context.Context, change pubdomain.StatusChange) error
}

// WorkflowActionRepo defines the interface for the audit trail.
type WorkflowActionRepo interface {
	Save(ctx context.Context, a *domain.WorkflowAction) (int64, error)
	FindAllByWorkflowID(ctx context.Context, workflowID int64) ([]domain.WorkflowAction, error)
}

// SweepRunRepo defines the interface for sweep run bookkeeping.
type SweepRunRepo interface {
	Save(ctx context.Context, run *domain.SweepRun) (int64, error)
	Finish(ctx context.Context, run *domain.SweepRun) error
	FindRecent(ctx context.Context, limit int) ([]domain.SweepRun, error)
}

// UserRepo defines the interface for user persistence, matching repository.UserRepository.
// Lookups return (nil, nil) when the user does not exist.
type UserRepo interface {
	Save(ctx context.Context, u *domain.User) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByApiKey(ctx context.Context, apiKey string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, u *domain.User) error
	UpdateApiKey(ctx context.Context, userID int64, apiKey string) error
}
