package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict means the row changed between read and write.
	ErrConflict = errors.New("concurrent modification")
)

type Workflow struct {
	ID          int64
	Title       string
	Description string
	Priority    string
	Category    string
	Status      WorkflowStatus
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
}

// StatusChange is a compare-and-swap write: it only applies while the stored row
// still has ExpectedVersion and From.
type StatusChange struct {
	WorkflowID      int64
	ExpectedVersion int64
	From            WorkflowStatus
	To              WorkflowStatus
	At              time.Time
}
