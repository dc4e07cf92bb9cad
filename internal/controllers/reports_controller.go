package controllers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/RealZimboGuy/approvalflow/internal/reports"
	"github.com/RealZimboGuy/approvalflow/internal/util"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportsController struct {
	*AuthController
	Service LifecycleService
}

func NewReportsController(service LifecycleService, authController *AuthController) *ReportsController {
	return &ReportsController{Service: service, AuthController: authController}
}

func (c *ReportsController) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	stats, err := c.Service.Stats(r.Context(), caller)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if caller.Role.Privileged() {
		if stats.TotalUsers, err = c.UserRepo.Count(r.Context()); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	util.WriteJSONResponse(w, http.StatusOK, stats)
}

func (c *ReportsController) workflowRows(r *http.Request) ([]reports.WorkflowRow, error) {
	workflows, err := c.Service.List(r.Context(), identity(r))
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(workflows))
	for _, wf := range workflows {
		ids = append(ids, wf.CreatedBy)
	}
	users, err := c.UserRepo.FindByIDs(r.Context(), ids)
	if err != nil {
		return nil, err
	}
	rows := make([]reports.WorkflowRow, 0, len(workflows))
	for _, wf := range workflows {
		rows = append(rows, reports.WorkflowRow{
			ID:          wf.ID,
			Title:       wf.Title,
			Description: wf.Description,
			Status:      wf.Status.String(),
			Priority:    wf.Priority,
			Category:    wf.Category,
			CreatedBy:   users[wf.CreatedBy].Username,
			CreatedAt:   wf.CreatedAt,
			UpdatedAt:   wf.UpdatedAt,
		})
	}
	return rows, nil
}

// writeAttachment renders into memory first so a failure can still become a JSON error.
func writeAttachment(w http.ResponseWriter, r *http.Request, contentType, filename string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.WarnContext(r.Context(), "Failed to write report", "error", err, "file", filename)
	}
}

func (c *ReportsController) handleWorkflowsCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := c.workflowRows(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeAttachment(w, r, "text/csv", "workflows.csv", func(buf *bytes.Buffer) error {
		return reports.WriteWorkflowsCSV(buf, rows)
	})
}

func (c *ReportsController) handleWorkflowsXLSX(w http.ResponseWriter, r *http.Request) {
	rows, err := c.workflowRows(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeAttachment(w, r, xlsxContentType, "workflows.xlsx", func(buf *bytes.Buffer) error {
		return reports.WriteWorkflowsXLSX(buf, rows)
	})
}

func (c *ReportsController) handleUsersCSV(w http.ResponseWriter, r *http.Request) {
	users, err := c.UserRepo.FindAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeAttachment(w, r, "text/csv", "users.csv", func(buf *bytes.Buffer) error {
		return reports.WriteUsersCSV(buf, users)
	})
}
