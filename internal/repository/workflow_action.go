package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

// WorkflowActionRepository persists and queries the audit trail of workflows.
type WorkflowActionRepository struct {
	db *sql.DB
}

func NewWorkflowActionRepository(db *sql.DB) *WorkflowActionRepository {
	return &WorkflowActionRepository{db: db}
}

// Save inserts a new workflow action and returns its ID.
func (r *WorkflowActionRepository) Save(ctx context.Context, a *domain.WorkflowAction) (int64, error) {
	vals := []any{a.WorkflowID, a.Type, a.FromStatus, a.ToStatus, a.ActorID, string(a.ActorRole), a.Text, formatDateInDatabase(a.DateTime)}
	base := `
		INSERT INTO workflow_actions (
			workflow_id, type, from_status, to_status, actor_id, actor_role, text, date_time
		) VALUES (` + placeholders(len(vals)) + `)`

	id, err := insertReturningID(ctx, r.db, base, vals...)
	if err != nil {
		slog.Error("Failed to save workflow action", "error", err, "workflowId", a.WorkflowID)
		return 0, fmt.Errorf("insert workflow action: %w", err)
	}
	a.ID = id
	return id, nil
}

// FindAllByWorkflowID returns the actions of a workflow oldest first.
func (r *WorkflowActionRepository) FindAllByWorkflowID(ctx context.Context, workflowID int64) ([]domain.WorkflowAction, error) {
	query := `
		SELECT id, workflow_id, type, from_status, to_status, actor_id, actor_role, text, date_time
		FROM workflow_actions
		WHERE workflow_id = ` + placeholder(1) + `
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := make([]domain.WorkflowAction, 0)
	for rows.Next() {
		var a domain.WorkflowAction
		var role string
		if err := rows.Scan(&a.ID, &a.WorkflowID, &a.Type, &a.FromStatus, &a.ToStatus, &a.ActorID, &role, &a.Text, &a.DateTime); err != nil {
			return nil, err
		}
		a.ActorRole = pubdomain.Role(role)
		a.DateTime = a.DateTime.UTC()
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
