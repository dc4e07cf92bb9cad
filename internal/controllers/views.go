package controllers

import (
	"strconv"
	"time"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/RealZimboGuy/approvalflow/internal/engine"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/models"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func userSummary(u *domain.User) *models.UserSummary {
	if u == nil {
		return nil
	}
	return &models.UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
	}
}

func userView(u *domain.User) models.UserView {
	v := models.UserView{
		UserSummary: *userSummary(u),
		Enabled:     u.IsEnabled(),
		HasKey:      u.ApiKey.Valid && u.ApiKey.String != "",
	}
	if u.Created.Valid {
		v.Created = formatTime(u.Created.Time)
	}
	return v
}

func workflowView(wf *pubdomain.Workflow, creators map[int64]domain.User, graph *engine.StatusGraph) models.WorkflowView {
	view := models.WorkflowView{
		ID:                  strconv.FormatInt(wf.ID, 10),
		Title:               wf.Title,
		Description:         wf.Description,
		Status:              wf.Status.String(),
		Priority:            wf.Priority,
		Category:            wf.Category,
		CreatedAt:           formatTime(wf.CreatedAt),
		UpdatedAt:           formatTime(wf.UpdatedAt),
		AllowedNextStatuses: make([]string, 0),
	}
	if creator, ok := creators[wf.CreatedBy]; ok {
		view.CreatedBy = userSummary(&creator)
	} else {
		view.CreatedBy = &models.UserSummary{ID: wf.CreatedBy}
	}
	for _, next := range graph.AllowedNext(wf.Status) {
		view.AllowedNextStatuses = append(view.AllowedNextStatuses, next.String())
	}
	return view
}

func transitionEventView(a domain.WorkflowAction) models.TransitionEventView {
	return models.TransitionEventView{
		ID:         a.ID,
		WorkflowID: strconv.FormatInt(a.WorkflowID, 10),
		Kind:       a.Type,
		From:       a.FromStatus,
		To:         a.ToStatus,
		ActorID:    a.ActorID,
		ActorRole:  string(a.ActorRole),
		Text:       a.Text,
		At:         formatTime(a.DateTime),
	}
}

func sweepRunView(run domain.SweepRun) models.SweepRunView {
	v := models.SweepRunView{
		ID:         run.ID,
		Trigger:    run.Trigger,
		Started:    formatTime(run.Started),
		Scanned:    run.Scanned,
		Candidates: run.Candidates,
		Completed:  run.Completed,
		Failed:     run.Failed,
	}
	if run.Finished.Valid {
		v.Finished = formatTime(run.Finished.Time)
	}
	return v
}
