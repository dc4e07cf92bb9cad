package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

type MockWorkflowRepo struct {
	SaveFunc          func(ctx context.Context, wf *pubdomain.Workflow) (int64, error)
	FindByIDFunc      func(ctx context.Context, id int64) (*pubdomain.Workflow, error)
	FindAllFunc       func(ctx context.Context) ([]pubdomain.Workflow, error)
	FindByCreatorFunc func(ctx context.Context, userID int64) ([]pubdomain.Workflow, error)
	FindByStatusFunc  func(ctx context.Context, status pubdomain.WorkflowStatus) ([]pubdomain.Workflow, error)
	UpdateStatusFunc  func(ctx context.Context, change pubdomain.StatusChange) error
}

func (m *MockWorkflowRepo) Save(ctx context.Context, wf *pubdomain.Workflow) (int64, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, wf)
	}
	wf.ID = 1
	return 1, nil
}
func (m *MockWorkflowRepo) FindByID(ctx context.Context, id int64) (*pubdomain.Workflow, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, pubdomain.ErrNotFound
}
func (m *MockWorkflowRepo) FindAll(ctx context.Context) ([]pubdomain.Workflow, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}
func (m *MockWorkflowRepo) FindByCreator(ctx context.Context, userID int64) ([]pubdomain.Workflow, error) {
	if m.FindByCreatorFunc != nil {
		return m.FindByCreatorFunc(ctx, userID)
	}
	return nil, nil
}
func (m *MockWorkflowRepo) FindByStatus(ctx context.Context, status pubdomain.WorkflowStatus) ([]pubdomain.Workflow, error) {
	if m.FindByStatusFunc != nil {
		return m.FindByStatusFunc(ctx, status)
	}
	return nil, nil
}
func (m *MockWorkflowRepo) UpdateStatus(ctx context.Context, change pubdomain.StatusChange) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, change)
	}
	return nil
}

type MockWorkflowActionRepo struct {
	mu      sync.Mutex
	saved   []domain.WorkflowAction
	SaveErr error
}

func (m *MockWorkflowActionRepo) Save(ctx context.Context, a *domain.WorkflowAction) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return 0, m.SaveErr
	}
	a.ID = int64(len(m.saved) + 1)
	m.saved = append(m.saved, *a)
	return a.ID, nil
}
func (m *MockWorkflowActionRepo) FindAllByWorkflowID(ctx context.Context, workflowID int64) ([]domain.WorkflowAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.WorkflowAction
	for _, a := range m.saved {
		if a.WorkflowID == workflowID {
			out = append(out, a)
		}
	}
	return out, nil
}
func (m *MockWorkflowActionRepo) Saved() []domain.WorkflowAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.WorkflowAction(nil), m.saved...)
}

type MockSweepRunRepo struct {
	mu       sync.Mutex
	runs     []domain.SweepRun
	finished []domain.SweepRun
}

func (m *MockSweepRunRepo) Save(ctx context.Context, run *domain.SweepRun) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run.ID = int64(len(m.runs) + 1)
	m.runs = append(m.runs, *run)
	return run.ID, nil
}
func (m *MockSweepRunRepo) Finish(ctx context.Context, run *domain.SweepRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = append(m.finished, *run)
	return nil
}
func (m *MockSweepRunRepo) FindRecent(ctx context.Context, limit int) ([]domain.SweepRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SweepRun(nil), m.finished...), nil
}

// memWorkflowRepo keeps workflows in a map and applies the same
// compare-and-swap rule as the SQL repository.
type memWorkflowRepo struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]pubdomain.Workflow
}

func newMemWorkflowRepo() *memWorkflowRepo {
	return &memWorkflowRepo{rows: map[int64]pubdomain.Workflow{}}
}

func (m *memWorkflowRepo) Save(ctx context.Context, wf *pubdomain.Workflow) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	wf.ID = m.nextID
	if wf.Version == 0 {
		wf.Version = 1
	}
	m.rows[wf.ID] = *wf
	return wf.ID, nil
}

func (m *memWorkflowRepo) FindByID(ctx context.Context, id int64) (*pubdomain.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wf, ok := m.rows[id]
	if !ok {
		return nil, fmt.Errorf("workflow %d: %w", id, pubdomain.ErrNotFound)
	}
	return &wf, nil
}

func (m *memWorkflowRepo) filter(keep func(pubdomain.Workflow) bool) []pubdomain.Workflow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]pubdomain.Workflow, 0)
	for _, wf := range m.rows {
		if keep(wf) {
			out = append(out, wf)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memWorkflowRepo) FindAll(ctx context.Context) ([]pubdomain.Workflow, error) {
	return m.filter(func(pubdomain.Workflow) bool { return true }), nil
}

func (m *memWorkflowRepo) FindByCreator(ctx context.Context, userID int64) ([]pubdomain.Workflow, error) {
	return m.filter(func(wf pubdomain.Workflow) bool { return wf.CreatedBy == userID }), nil
}

func (m *memWorkflowRepo) FindByStatus(ctx context.Context, status pubdomain.WorkflowStatus) ([]pubdomain.Workflow, error) {
	return m.filter(func(wf pubdomain.Workflow) bool { return wf.Status == status }), nil
}

func (m *memWorkflowRepo) UpdateStatus(ctx context.Context, change pubdomain.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	wf, ok := m.rows[change.WorkflowID]
	if !ok {
		return pubdomain.ErrNotFound
	}
	if wf.Version != change.ExpectedVersion || wf.Status != change.From {
		return pubdomain.ErrConflict
	}
	wf.Status = change.To
	wf.UpdatedAt = change.At
	wf.Version++
	m.rows[wf.ID] = wf
	return nil
}

// put stores wf as-is, for arranging fixtures.
func (m *memWorkflowRepo) put(wf pubdomain.Workflow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if wf.Version == 0 {
		wf.Version = 1
	}
	m.rows[wf.ID] = wf
	if wf.ID > m.nextID {
		m.nextID = wf.ID
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []TransitionEvent
}

func (r *recordingSink) Record(ev TransitionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) Events() []TransitionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TransitionEvent(nil), r.events...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
