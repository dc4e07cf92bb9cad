package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
)

type SweepRunRepository struct {
	db *sql.DB
}

func NewSweepRunRepository(db *sql.DB) *SweepRunRepository {
	return &SweepRunRepository{db: db}
}

// Save inserts the run as started and returns its id.
func (r *SweepRunRepository) Save(ctx context.Context, run *domain.SweepRun) (int64, error) {
	vals := []any{run.Trigger, formatDateInDatabase(run.Started)}
	base := `INSERT INTO sweep_runs (trigger_source, started) VALUES (` + placeholders(len(vals)) + `)`
	id, err := insertReturningID(ctx, r.db, base, vals...)
	if err != nil {
		return 0, fmt.Errorf("insert sweep run: %w", err)
	}
	run.ID = id
	return id, nil
}

// Finish stores the counters and finish time of a run.
func (r *SweepRunRepository) Finish(ctx context.Context, run *domain.SweepRun) error {
	query := `
		UPDATE sweep_runs
		SET finished = ` + placeholder(1) + `, scanned = ` + placeholder(2) + `, candidates = ` + placeholder(3) + `,
		    completed = ` + placeholder(4) + `, failed = ` + placeholder(5) + `
		WHERE id = ` + placeholder(6)
	_, err := r.db.ExecContext(ctx, query,
		formatDateInDatabaseNull(run.Finished),
		run.Scanned,
		run.Candidates,
		run.Completed,
		run.Failed,
		run.ID,
	)
	return err
}

// FindRecent returns up to limit runs, newest first.
func (r *SweepRunRepository) FindRecent(ctx context.Context, limit int) ([]domain.SweepRun, error) {
	query := `
		SELECT id, trigger_source, started, finished, scanned, candidates, completed, failed
		FROM sweep_runs
		ORDER BY id DESC
		LIMIT ` + placeholder(1)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]domain.SweepRun, 0)
	for rows.Next() {
		var run domain.SweepRun
		if err := rows.Scan(&run.ID, &run.Trigger, &run.Started, &run.Finished, &run.Scanned, &run.Candidates, &run.Completed, &run.Failed); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
