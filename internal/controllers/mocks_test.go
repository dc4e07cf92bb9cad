package controllers

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/RealZimboGuy/approvalflow/internal/auth"
	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/RealZimboGuy/approvalflow/internal/engine"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/core"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/models"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-test-secret-0123456789"

// Mock repos and services for controller tests, only the func fields a test sets are used.

type MockUserRepo struct {
	SaveFunc           func(u *domain.User) (int64, error)
	FindByIDFunc       func(id int64) (*domain.User, error)
	FindByUsernameFunc func(username string) (*domain.User, error)
	FindByApiKeyFunc   func(apiKey string) (*domain.User, error)
	FindByIDsFunc      func(ids []int64) (map[int64]domain.User, error)
	FindAllFunc        func() ([]domain.User, error)
	CountFunc          func() (int, error)
	UpdateFunc         func(u *domain.User) error
	UpdateApiKeyFunc   func(userID int64, apiKey string) error
}

func (m *MockUserRepo) Save(_ context.Context, u *domain.User) (int64, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(u)
	}
	u.ID = 100
	return u.ID, nil
}
func (m *MockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, nil
}
func (m *MockUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(username)
	}
	return nil, nil
}
func (m *MockUserRepo) FindByApiKey(_ context.Context, apiKey string) (*domain.User, error) {
	if m.FindByApiKeyFunc != nil {
		return m.FindByApiKeyFunc(apiKey)
	}
	return nil, nil
}
func (m *MockUserRepo) FindByIDs(_ context.Context, ids []int64) (map[int64]domain.User, error) {
	if m.FindByIDsFunc != nil {
		return m.FindByIDsFunc(ids)
	}
	return map[int64]domain.User{}, nil
}
func (m *MockUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc()
	}
	return nil, nil
}
func (m *MockUserRepo) Count(_ context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc()
	}
	return 0, nil
}
func (m *MockUserRepo) Update(_ context.Context, u *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(u)
	}
	return nil
}
func (m *MockUserRepo) UpdateApiKey(_ context.Context, userID int64, apiKey string) error {
	if m.UpdateApiKeyFunc != nil {
		return m.UpdateApiKeyFunc(userID, apiKey)
	}
	return nil
}

type MockLifecycleService struct {
	CreateFunc            func(in engine.NewWorkflow, actor core.Identity) (*pubdomain.Workflow, error)
	ListFunc              func(actor core.Identity) ([]pubdomain.Workflow, error)
	GetFunc               func(id int64, actor core.Identity) (*pubdomain.Workflow, error)
	RequestTransitionFunc func(id int64, status string, actor core.Identity) (*pubdomain.Workflow, error)
	HistoryFunc           func(id int64, actor core.Identity) ([]domain.WorkflowAction, error)
	StatsFunc             func(actor core.Identity) (*models.DashboardStats, error)
}

func (m *MockLifecycleService) Create(_ context.Context, in engine.NewWorkflow, actor core.Identity) (*pubdomain.Workflow, error) {
	return m.CreateFunc(in, actor)
}
func (m *MockLifecycleService) List(_ context.Context, actor core.Identity) ([]pubdomain.Workflow, error) {
	if m.ListFunc != nil {
		return m.ListFunc(actor)
	}
	return nil, nil
}
func (m *MockLifecycleService) Get(_ context.Context, id int64, actor core.Identity) (*pubdomain.Workflow, error) {
	return m.GetFunc(id, actor)
}
func (m *MockLifecycleService) RequestTransition(_ context.Context, id int64, status string, actor core.Identity) (*pubdomain.Workflow, error) {
	return m.RequestTransitionFunc(id, status, actor)
}
func (m *MockLifecycleService) History(_ context.Context, id int64, actor core.Identity) ([]domain.WorkflowAction, error) {
	return m.HistoryFunc(id, actor)
}
func (m *MockLifecycleService) Stats(_ context.Context, actor core.Identity) (*models.DashboardStats, error) {
	return m.StatsFunc(actor)
}
func (m *MockLifecycleService) Graph() *engine.StatusGraph { return engine.NewStatusGraph() }

type MockSweepRunner struct {
	SweepFunc  func(ctx context.Context, trigger string) (engine.SweepResult, error)
	RecentFunc func(limit int) ([]domain.SweepRun, error)
}

func (m *MockSweepRunner) Sweep(ctx context.Context, trigger string) (engine.SweepResult, error) {
	return m.SweepFunc(ctx, trigger)
}
func (m *MockSweepRunner) Recent(_ context.Context, limit int) ([]domain.SweepRun, error) {
	return m.RecentFunc(limit)
}

var testUsers = map[int64]domain.User{
	1: {ID: 1, Username: "admin", Role: pubdomain.RoleAdmin, Enabled: sql.NullBool{Bool: true, Valid: true}},
	2: {ID: 2, Username: "manager", Role: pubdomain.RoleManager, Enabled: sql.NullBool{Bool: true, Valid: true}},
	3: {ID: 3, Username: "reviewer", Role: pubdomain.RoleReviewer, Enabled: sql.NullBool{Bool: true, Valid: true}},
	4: {ID: 4, Username: "alice", Role: pubdomain.RoleUser, Enabled: sql.NullBool{Bool: true, Valid: true}},
	5: {ID: 5, Username: "bob", Role: pubdomain.RoleUser, Enabled: sql.NullBool{Bool: true, Valid: true}},
	6: {ID: 6, Username: "gone", Role: pubdomain.RoleUser, Enabled: sql.NullBool{Bool: false, Valid: true}},
}

// newUserRepo returns a mock backed by testUsers; tests override fields as needed.
func newUserRepo() *MockUserRepo {
	return &MockUserRepo{
		FindByIDFunc: func(id int64) (*domain.User, error) {
			if u, ok := testUsers[id]; ok {
				return &u, nil
			}
			return nil, nil
		},
		FindByIDsFunc: func(ids []int64) (map[int64]domain.User, error) {
			out := make(map[int64]domain.User)
			for _, id := range ids {
				if u, ok := testUsers[id]; ok {
					out[id] = u
				}
			}
			return out, nil
		},
		FindByApiKeyFunc: func(apiKey string) (*domain.User, error) {
			for _, u := range testUsers {
				if u.Username+"-key" == apiKey {
					return &u, nil
				}
			}
			return nil, nil
		},
	}
}

func newAuth(t *testing.T, repo engine.UserRepo) *AuthController {
	t.Helper()
	tokens, err := auth.NewTokenService(testSecret, time.Hour, core.NewRealClock())
	require.NoError(t, err)
	return NewAuthController(repo, tokens, 5*time.Second)
}

// asUser authenticates a request with the API key of the given test user.
func asUser(req *http.Request, id int64) *http.Request {
	req.Header.Set("X-API-Key", testUsers[id].Username+"-key")
	return req
}

func sampleWorkflow(id int64, status pubdomain.WorkflowStatus, createdBy int64) *pubdomain.Workflow {
	ts := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	return &pubdomain.Workflow{
		ID:        id,
		Title:     "Laptop purchase",
		Priority:  "HIGH",
		Category:  "IT",
		Status:    status,
		CreatedBy: createdBy,
		CreatedAt: ts,
		UpdatedAt: ts,
		Version:   1,
	}
}
