package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/RealZimboGuy/approvalflow/internal/engine"
	"github.com/RealZimboGuy/approvalflow/internal/util"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/models"
)

// WorkflowsController holds dependencies for workflow HTTP endpoints.
type WorkflowsController struct {
	*AuthController
	Service LifecycleService
}

func NewWorkflowsController(service LifecycleService, authController *AuthController) *WorkflowsController {
	return &WorkflowsController{Service: service, AuthController: authController}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func writeBadID(w http.ResponseWriter) {
	util.WriteError(w, http.StatusBadRequest, codeBadRequest, "id must be a positive integer")
}

// creators loads the users referenced by workflows, failures fall back to id only summaries.
func (c *WorkflowsController) creators(r *http.Request, workflows ...pubdomain.Workflow) map[int64]domain.User {
	ids := make([]int64, 0, len(workflows))
	for _, wf := range workflows {
		ids = append(ids, wf.CreatedBy)
	}
	users, err := c.UserRepo.FindByIDs(r.Context(), ids)
	if err != nil {
		slog.WarnContext(r.Context(), "Failed to load workflow creators", "error", err)
		return nil
	}
	return users
}

func (c *WorkflowsController) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.CreateWorkflowRequest](r)
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	wf, err := c.Service.Create(r.Context(), engine.NewWorkflow{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	}, identity(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, workflowView(wf, c.creators(r, *wf), c.Service.Graph()))
}

func (c *WorkflowsController) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := c.Service.List(r.Context(), identity(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	creators := c.creators(r, workflows...)
	views := make([]models.WorkflowView, 0, len(workflows))
	for i := range workflows {
		views = append(views, workflowView(&workflows[i], creators, c.Service.Graph()))
	}
	util.WriteJSONResponse(w, http.StatusOK, views)
}

func (c *WorkflowsController) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadID(w)
		return
	}
	wf, err := c.Service.Get(r.Context(), id, identity(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, workflowView(wf, c.creators(r, *wf), c.Service.Graph()))
}

func (c *WorkflowsController) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadID(w)
		return
	}
	req, err := util.DecodeJSONBody[models.UpdateStatusRequest](r)
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	wf, err := c.Service.RequestTransition(r.Context(), id, req.Status, identity(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, workflowView(wf, c.creators(r, *wf), c.Service.Graph()))
}

func (c *WorkflowsController) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadID(w)
		return
	}
	actions, err := c.Service.History(r.Context(), id, identity(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	views := make([]models.TransitionEventView, 0, len(actions))
	for _, a := range actions {
		views = append(views, transitionEventView(a))
	}
	util.WriteJSONResponse(w, http.StatusOK, views)
}
