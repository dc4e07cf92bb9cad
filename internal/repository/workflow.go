package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

type WorkflowRepository struct {
	db *sql.DB
}

const ALL_COLUMNS = ` id, title, description, priority, category, status,
		       created_by, created_at, updated_at, version `

func NewWorkflowRepository(db *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*domain.Workflow, error) {
	var wf domain.Workflow
	var status string
	err := row.Scan(
		&wf.ID,
		&wf.Title,
		&wf.Description,
		&wf.Priority,
		&wf.Category,
		&status,
		&wf.CreatedBy,
		&wf.CreatedAt,
		&wf.UpdatedAt,
		&wf.Version,
	)
	if err != nil {
		return nil, err
	}
	wf.Status = domain.WorkflowStatus(status)
	wf.CreatedAt = wf.CreatedAt.UTC()
	wf.UpdatedAt = wf.UpdatedAt.UTC()
	return &wf, nil
}

// Save inserts a new workflow, assigning wf.ID. Version starts at 1 when unset.
func (r *WorkflowRepository) Save(ctx context.Context, wf *domain.Workflow) (int64, error) {
	if wf.Version == 0 {
		wf.Version = 1
	}
	vals := []any{wf.Title, wf.Description, wf.Priority, wf.Category, string(wf.Status), wf.CreatedBy,
		formatDateInDatabase(wf.CreatedAt), formatDateInDatabase(wf.UpdatedAt), wf.Version}
	base := `INSERT INTO workflow (
		title, description, priority, category, status,
		created_by, created_at, updated_at, version
	) VALUES (` + placeholders(len(vals)) + `)`

	id, err := insertReturningID(ctx, r.db, base, vals...)
	if err != nil {
		return 0, fmt.Errorf("insert workflow: %w", err)
	}
	wf.ID = id
	return id, nil
}

func (r *WorkflowRepository) FindByID(ctx context.Context, id int64) (*domain.Workflow, error) {
	query := `
		SELECT ` + ALL_COLUMNS + `
		FROM workflow WHERE id = ` + placeholder(1)

	wf, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("workflow %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find workflow %d: %w", id, err)
	}
	return wf, nil
}

// FindAll returns every workflow ordered by id ascending.
func (r *WorkflowRepository) FindAll(ctx context.Context) ([]domain.Workflow, error) {
	return r.query(ctx, `SELECT `+ALL_COLUMNS+` FROM workflow ORDER BY id ASC`)
}

func (r *WorkflowRepository) FindByCreator(ctx context.Context, userID int64) ([]domain.Workflow, error) {
	return r.query(ctx, `SELECT `+ALL_COLUMNS+` FROM workflow WHERE created_by = `+placeholder(1)+` ORDER BY id ASC`, userID)
}

func (r *WorkflowRepository) FindByStatus(ctx context.Context, status domain.WorkflowStatus) ([]domain.Workflow, error) {
	return r.query(ctx, `SELECT `+ALL_COLUMNS+` FROM workflow WHERE status = `+placeholder(1)+` ORDER BY id ASC`, string(status))
}

func (r *WorkflowRepository) query(ctx context.Context, query string, args ...any) ([]domain.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workflows := make([]domain.Workflow, 0)
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, *wf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workflows, nil
}

// UpdateStatus is the compare-and-swap write behind every status change. It
// only touches the row while it still carries the expected version and status,
// and bumps the version on success. A lost race returns domain.ErrConflict, a
// missing row domain.ErrNotFound.
func (r *WorkflowRepository) UpdateStatus(ctx context.Context, change domain.StatusChange) error {
	query := `
		UPDATE workflow
		SET status = ` + placeholder(1) + `, updated_at = ` + placeholder(2) + `, version = version + 1
		WHERE id = ` + placeholder(3) + ` AND version = ` + placeholder(4) + ` AND status = ` + placeholder(5)

	result, err := r.db.ExecContext(ctx, query,
		string(change.To),
		formatDateInDatabase(change.At),
		change.WorkflowID,
		change.ExpectedVersion,
		string(change.From),
	)
	if err != nil {
		return fmt.Errorf("update workflow %d status: %w", change.WorkflowID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 1 {
		return nil
	}

	var version int64
	err = r.db.QueryRowContext(ctx, `SELECT version FROM workflow WHERE id = `+placeholder(1), change.WorkflowID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("workflow %d: %w", change.WorkflowID, domain.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("workflow %d expected version %d found %d: %w", change.WorkflowID, change.ExpectedVersion, version, domain.ErrConflict)
}
