package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/RealZimboGuy/approvalflow/internal/engine"
	"github.com/RealZimboGuy/approvalflow/internal/util"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/models"
)

const recentSweepRuns = 20

type SweepsController struct {
	*AuthController
	Sweeper SweepRunner
}

func NewSweepsController(sweeper SweepRunner, authController *AuthController) *SweepsController {
	return &SweepsController{Sweeper: sweeper, AuthController: authController}
}

func (c *SweepsController) handleGetSweeps(w http.ResponseWriter, r *http.Request) {
	runs, err := c.Sweeper.Recent(r.Context(), recentSweepRuns)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	views := make([]models.SweepRunView, 0, len(runs))
	for _, run := range runs {
		views = append(views, sweepRunView(run))
	}
	util.WriteJSONResponse(w, http.StatusOK, views)
}

// handleTriggerSweep runs a sweep now. It is detached from the request deadline,
// a large backlog may take longer than an interactive call is allowed to.
func (c *SweepsController) handleTriggerSweep(w http.ResponseWriter, r *http.Request) {
	result, err := c.Sweeper.Sweep(context.WithoutCancel(r.Context()), domain.SweepTriggerManual)
	if errors.Is(err, engine.ErrSweepInProgress) {
		util.WriteError(w, http.StatusConflict, codeConflict, "a sweep is already running")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, models.SweepRunView{
		ID:         result.RunID,
		Trigger:    result.Trigger,
		Started:    formatTime(result.Started),
		Finished:   formatTime(result.Finished),
		Scanned:    result.Scanned,
		Candidates: result.Candidates,
		Completed:  result.Completed,
		Failed:     result.Failed,
	})
}
