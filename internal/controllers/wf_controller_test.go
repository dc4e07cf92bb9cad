package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/RealZimboGuy/approvalflow/internal/engine"
	"github.com/RealZimboGuy/approvalflow/internal/util"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/core"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workflowsMux(t *testing.T, svc *MockLifecycleService) *http.ServeMux {
	c := NewWorkflowsController(svc, newAuth(t, newUserRepo()))
	mux := http.NewServeMux()
	c.RegisterRoutes(mux)
	return mux
}

func TestCreateWorkflow(t *testing.T) {
	var got engine.NewWorkflow
	svc := &MockLifecycleService{
		CreateFunc: func(in engine.NewWorkflow, actor core.Identity) (*pubdomain.Workflow, error) {
			got = in
			assert.Equal(t, int64(4), actor.UserID)
			wf := sampleWorkflow(7, pubdomain.StatusDraft, actor.UserID)
			wf.Title = in.Title
			return wf, nil
		},
	}
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/workflows",
		bytes.NewBufferString(`{"title":"New monitor","priority":"LOW","category":"IT"}`)), 4)
	rr := httptest.NewRecorder()
	workflowsMux(t, svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "New monitor", got.Title)
	assert.Equal(t, "LOW", got.Priority)

	view, err := util.DecodeJSONBodyResponse[models.WorkflowView](rr.Result())
	require.NoError(t, err)
	assert.Equal(t, "7", view.ID)
	assert.Equal(t, "DRAFT", view.Status)
	assert.Equal(t, "alice", view.CreatedBy.Username)
	assert.Equal(t, "2026-03-04T10:00:00Z", view.CreatedAt)
	assert.Equal(t, []string{"SUBMITTED", "CANCELLED"}, view.AllowedNextStatuses)
}

func TestUpdateStatusMapsErrorKinds(t *testing.T) {
	tests := []struct {
		kind     engine.ErrorKind
		expected int
	}{
		{engine.KindNotFound, http.StatusNotFound},
		{engine.KindInvalidStatus, http.StatusBadRequest},
		{engine.KindForbidden, http.StatusForbidden},
		{engine.KindIllegalTransition, http.StatusUnprocessableEntity},
		{engine.KindConflict, http.StatusConflict},
		{engine.KindStoreUnavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			svc := &MockLifecycleService{
				RequestTransitionFunc: func(id int64, status string, actor core.Identity) (*pubdomain.Workflow, error) {
					return nil, &engine.Error{Kind: tt.kind, Message: "boom"}
				},
			}
			req := asUser(httptest.NewRequest(http.MethodPatch, "/api/workflows/9/status",
				bytes.NewBufferString(`{"status":"APPROVED"}`)), 3)
			rr := httptest.NewRecorder()
			workflowsMux(t, svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expected, rr.Code)
			body, err := util.DecodeJSONBodyResponse[models.ErrorResponse](rr.Result())
			require.NoError(t, err)
			assert.Equal(t, string(tt.kind), body.Code)
			assert.Equal(t, "boom", body.Message)
		})
	}
}

func TestUpdateStatusSuccess(t *testing.T) {
	svc := &MockLifecycleService{
		RequestTransitionFunc: func(id int64, status string, actor core.Identity) (*pubdomain.Workflow, error) {
			assert.Equal(t, int64(9), id)
			assert.Equal(t, "approved", status)
			assert.Equal(t, pubdomain.RoleReviewer, actor.Role)
			return sampleWorkflow(id, pubdomain.StatusApproved, 4), nil
		},
	}
	req := asUser(httptest.NewRequest(http.MethodPatch, "/api/workflows/9/status",
		bytes.NewBufferString(`{"status":"approved"}`)), 3)
	rr := httptest.NewRecorder()
	workflowsMux(t, svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	view, err := util.DecodeJSONBodyResponse[models.WorkflowView](rr.Result())
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", view.Status)
	assert.Equal(t, []string{"COMPLETED", "REOPENED"}, view.AllowedNextStatuses)
}

func TestUnknownErrorsHideDetail(t *testing.T) {
	svc := &MockLifecycleService{
		GetFunc: func(id int64, actor core.Identity) (*pubdomain.Workflow, error) {
			return nil, errors.New("dial tcp 10.0.0.1:5432: connection refused")
		},
	}
	rr := httptest.NewRecorder()
	workflowsMux(t, svc).ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/workflows/3", nil), 1))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.NotContains(t, rr.Body.String(), "10.0.0.1")
}

func TestWorkflowRoutesRejectBadIDs(t *testing.T) {
	svc := &MockLifecycleService{}
	for _, path := range []string{"/api/workflows/abc", "/api/workflows/0", "/api/workflows/-3/history"} {
		rr := httptest.NewRecorder()
		workflowsMux(t, svc).ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, path, nil), 1))
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
	}
}

func TestWorkflowRoutesRequireAuth(t *testing.T) {
	rr := httptest.NewRecorder()
	workflowsMux(t, &MockLifecycleService{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/workflows", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListWorkflowsFallsBackWhenCreatorsFail(t *testing.T) {
	repo := newUserRepo()
	repo.FindByIDsFunc = func(ids []int64) (map[int64]domain.User, error) {
		return nil, errors.New("db down")
	}
	svc := &MockLifecycleService{
		ListFunc: func(actor core.Identity) ([]pubdomain.Workflow, error) {
			return []pubdomain.Workflow{*sampleWorkflow(1, pubdomain.StatusSubmitted, 4)}, nil
		},
	}
	c := NewWorkflowsController(svc, newAuth(t, repo))
	mux := http.NewServeMux()
	c.RegisterRoutes(mux)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/workflows", nil), 4))
	require.Equal(t, http.StatusOK, rr.Code)

	views, err := util.DecodeJSONBodyResponse[[]models.WorkflowView](rr.Result())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, int64(4), views[0].CreatedBy.ID)
	assert.Empty(t, views[0].CreatedBy.Username)
}

func TestGetHistory(t *testing.T) {
	at := time.Date(2026, 3, 5, 8, 30, 0, 0, time.UTC)
	svc := &MockLifecycleService{
		HistoryFunc: func(id int64, actor core.Identity) ([]domain.WorkflowAction, error) {
			return []domain.WorkflowAction{
				{ID: 1, WorkflowID: id, Type: domain.ActionTypeCreated, ToStatus: "DRAFT", ActorID: 4, ActorRole: pubdomain.RoleUser, DateTime: at},
				{ID: 2, WorkflowID: id, Type: domain.ActionTypeTransition, FromStatus: "DRAFT", ToStatus: "SUBMITTED", ActorID: 4, ActorRole: pubdomain.RoleUser, DateTime: at},
			}, nil
		},
	}
	rr := httptest.NewRecorder()
	workflowsMux(t, svc).ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/api/workflows/12/history", nil), 4))
	require.Equal(t, http.StatusOK, rr.Code)

	events, err := util.DecodeJSONBodyResponse[[]models.TransitionEventView](rr.Result())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "12", events[1].WorkflowID)
	assert.Equal(t, "SUBMITTED", events[1].To)
	assert.Equal(t, "2026-03-05T08:30:00Z", events[1].At)
}
