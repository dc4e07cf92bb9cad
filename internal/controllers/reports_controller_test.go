package controllers

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/RealZimboGuy/approvalflow/internal/util"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/core"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func reportsMux(t *testing.T, svc *MockLifecycleService, repo *MockUserRepo) *http.ServeMux {
	c := NewReportsController(svc, newAuth(t, repo))
	mux := http.NewServeMux()
	c.RegisterRoutes(mux)
	return mux
}

func statsService() *MockLifecycleService {
	return &MockLifecycleService{
		StatsFunc: func(actor core.Identity) (*models.DashboardStats, error) {
			return &models.DashboardStats{TotalWorkflows: 3, StatusDistribution: map[string]int{"DRAFT": 3}}, nil
		},
		ListFunc: func(actor core.Identity) ([]pubdomain.Workflow, error) {
			return []pubdomain.Workflow{
				*sampleWorkflow(1, pubdomain.StatusSubmitted, 4),
				*sampleWorkflow(2, pubdomain.StatusApproved, 5),
			}, nil
		},
	}
}

func TestDashboardStatsTotalUsersForPrivilegedOnly(t *testing.T) {
	repo := newUserRepo()
	repo.CountFunc = func() (int, error) { return 6, nil }
	mux := reportsMux(t, statsService(), repo)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil), 3))
	require.Equal(t, http.StatusOK, rr.Code)
	stats, err := util.DecodeJSONBodyResponse[models.DashboardStats](rr.Result())
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalWorkflows)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil), 4))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "totalUsers")
}

func TestWorkflowsCSV(t *testing.T) {
	rr := httptest.NewRecorder()
	reportsMux(t, statsService(), newUserRepo()).ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/reports/workflows.csv", nil), 2))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "workflows.csv")

	records, err := csv.NewReader(rr.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "SUBMITTED", records[1][3])
	assert.Equal(t, "alice", records[1][6])
	assert.Equal(t, "bob", records[2][6])
}

func TestWorkflowsXLSX(t *testing.T) {
	rr := httptest.NewRecorder()
	reportsMux(t, statsService(), newUserRepo()).ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/reports/workflows.xlsx", nil), 1))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(rr.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Workflows")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "APPROVED", rows[2][3])
}

func TestReportsRoleChecks(t *testing.T) {
	repo := newUserRepo()
	repo.FindAllFunc = func() ([]domain.User, error) { return []domain.User{testUsers[1]}, nil }
	mux := reportsMux(t, statsService(), repo)

	tests := []struct {
		path     string
		caller   int64
		expected int
	}{
		{"/api/reports/workflows.csv", 4, http.StatusForbidden},
		{"/api/reports/workflows.xlsx", 4, http.StatusForbidden},
		{"/api/reports/users.csv", 3, http.StatusForbidden},
		{"/api/reports/users.csv", 2, http.StatusOK},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, tt.path, nil), tt.caller))
		assert.Equal(t, tt.expected, rr.Code, tt.path)
	}
}
