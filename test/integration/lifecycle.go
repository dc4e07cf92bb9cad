package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLifecycleScenario drives one workflow from creation to auto-completion over
// HTTP. Every database flavour runs the same scenario.
func RunLifecycleScenario(t *testing.T, h *Harness) {
	admin := h.Login("admin", AdminPassword)
	reviewer := h.Login("reviewer", "reviewer123")
	viewer := h.Login("viewer", "viewer123")

	// a second plain user who must not see the viewer's workflow
	resp := h.Do(http.MethodPost, "/api/users", admin, models.CreateUserRequest{Username: "bob", Password: "bob-pass", Role: "USER"})
	Decode[models.UserView](t, resp, http.StatusCreated)
	bob := h.Login("bob", "bob-pass")

	created := Decode[models.WorkflowView](t, h.Do(http.MethodPost, "/api/workflows", viewer,
		models.CreateWorkflowRequest{Title: "Conference travel", Priority: "MEDIUM", Category: "TRAVEL"}), http.StatusCreated)
	assert.Equal(t, "DRAFT", created.Status)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, "viewer", created.CreatedBy.Username)
	path := "/api/workflows/" + created.ID

	submitted := Decode[models.WorkflowView](t, h.Do(http.MethodPatch, path+"/status", viewer,
		models.UpdateStatusRequest{Status: "submitted"}), http.StatusOK)
	assert.Equal(t, "SUBMITTED", submitted.Status)

	assertError(t, h.Do(http.MethodGet, path, bob, nil), http.StatusForbidden, "FORBIDDEN")
	assertError(t, h.Do(http.MethodPatch, path+"/status", bob, models.UpdateStatusRequest{Status: "CANCELLED"}), http.StatusForbidden, "FORBIDDEN")
	assertError(t, h.Do(http.MethodPatch, path+"/status", reviewer, models.UpdateStatusRequest{Status: "DONE"}), http.StatusBadRequest, "INVALID_STATUS")
	assertError(t, h.Do(http.MethodPatch, path+"/status", reviewer, models.UpdateStatusRequest{Status: "COMPLETED"}), http.StatusUnprocessableEntity, "ILLEGAL_TRANSITION")
	assertError(t, h.Do(http.MethodGet, "/api/workflows/999999", admin, nil), http.StatusNotFound, "NOT_FOUND")

	inReview := Decode[models.WorkflowView](t, h.Do(http.MethodPatch, path+"/status", reviewer,
		models.UpdateStatusRequest{Status: "IN_REVIEW"}), http.StatusOK)
	assert.Equal(t, []string{"APPROVED", "REJECTED", "CANCELLED"}, inReview.AllowedNextStatuses)

	h.Clock.Add(time.Hour)
	approved := Decode[models.WorkflowView](t, h.Do(http.MethodPatch, path+"/status", reviewer,
		models.UpdateStatusRequest{Status: "APPROVED"}), http.StatusOK)
	assert.Equal(t, "APPROVED", approved.Status)

	// not stale yet
	h.Clock.Add(time.Hour)
	run := Decode[models.SweepRunView](t, h.Do(http.MethodPost, "/api/sweeps", admin, nil), http.StatusOK)
	assert.Equal(t, 1, run.Scanned)
	assert.Equal(t, 0, run.Completed)

	h.Clock.Add(25 * time.Hour)
	run = Decode[models.SweepRunView](t, h.Do(http.MethodPost, "/api/sweeps", admin, nil), http.StatusOK)
	assert.Equal(t, 1, run.Candidates)
	assert.Equal(t, 1, run.Completed)
	assert.Equal(t, 0, run.Failed)

	run = Decode[models.SweepRunView](t, h.Do(http.MethodPost, "/api/sweeps", admin, nil), http.StatusOK)
	assert.Equal(t, 0, run.Completed)

	completed := Decode[models.WorkflowView](t, h.Do(http.MethodGet, path, viewer, nil), http.StatusOK)
	assert.Equal(t, "COMPLETED", completed.Status)
	assert.Empty(t, completed.AllowedNextStatuses)
	assertError(t, h.Do(http.MethodPatch, path+"/status", admin, models.UpdateStatusRequest{Status: "REOPENED"}), http.StatusUnprocessableEntity, "ILLEGAL_TRANSITION")

	runs := Decode[[]models.SweepRunView](t, h.Do(http.MethodGet, "/api/sweeps", admin, nil), http.StatusOK)
	assert.Len(t, runs, 3)

	require.Eventually(t, func() bool {
		events := Decode[[]models.TransitionEventView](t, h.Do(http.MethodGet, path+"/history", viewer, nil), http.StatusOK)
		return len(events) == 5
	}, 5*time.Second, 50*time.Millisecond)
	events := Decode[[]models.TransitionEventView](t, h.Do(http.MethodGet, path+"/history", viewer, nil), http.StatusOK)
	kinds := make([]string, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind+":"+ev.To)
	}
	assert.Equal(t, []string{"CREATED:DRAFT", "TRANSITION:SUBMITTED", "TRANSITION:IN_REVIEW", "TRANSITION:APPROVED", "AUTO_COMPLETED:COMPLETED"}, kinds)

	stats := Decode[models.DashboardStats](t, h.Do(http.MethodGet, "/api/dashboard/stats", admin, nil), http.StatusOK)
	assert.Equal(t, 1, stats.TotalWorkflows)
	assert.Equal(t, 1, stats.StatusDistribution["COMPLETED"])
	assert.Equal(t, 5, stats.TotalUsers)

	bobView := Decode[[]models.WorkflowView](t, h.Do(http.MethodGet, "/api/workflows", bob, nil), http.StatusOK)
	assert.Empty(t, bobView)
}

func assertError(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	body := Decode[models.ErrorResponse](t, resp, status)
	assert.Equal(t, code, body.Code)
}
