package controllers

import (
	"net/http"

	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

var (
	adminOnly       = []domain.Role{domain.RoleAdmin}
	userManagers    = []domain.Role{domain.RoleAdmin, domain.RoleManager}
	privilegedRoles = []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleReviewer}
)

// RegisterRoutes wires the HTTP routes for this controller.
func (c *AuthController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", c.handleLogin)
	mux.HandleFunc("GET /api/auth/me", c.RequireAuth(c.handleMe))
	mux.HandleFunc("POST /api/auth/change-password", c.RequireAuth(c.handleChangePassword))
}
func (c *WorkflowsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/workflows", c.RequireAuth(c.handleCreateWorkflow))
	mux.HandleFunc("GET /api/workflows", c.RequireAuth(c.handleListWorkflows))
	mux.HandleFunc("GET /api/workflows/{id}", c.RequireAuth(c.handleGetWorkflow))
	mux.HandleFunc("PATCH /api/workflows/{id}/status", c.RequireAuth(c.handleUpdateStatus))
	mux.HandleFunc("GET /api/workflows/{id}/history", c.RequireAuth(c.handleGetHistory))
}
func (c *UsersController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", c.RequireAuth(c.RequireRole(userManagers, c.handleGetUsers)))
	mux.HandleFunc("POST /api/users", c.RequireAuth(c.RequireRole(adminOnly, c.handleCreateUser)))
	mux.HandleFunc("GET /api/users/{id}", c.RequireAuth(c.handleGetUserById))
	mux.HandleFunc("PATCH /api/users/{id}", c.RequireAuth(c.RequireRole(adminOnly, c.handleUpdateUser)))
	mux.HandleFunc("DELETE /api/users/{id}", c.RequireAuth(c.RequireRole(adminOnly, c.handleDeleteUser)))
	mux.HandleFunc("POST /api/users/{id}/apikey", c.RequireAuth(c.handleRotateApiKey))
}
func (c *SweepsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sweeps", c.RequireAuth(c.RequireRole(adminOnly, c.handleGetSweeps)))
	mux.HandleFunc("POST /api/sweeps", c.RequireAuth(c.RequireRole(adminOnly, c.handleTriggerSweep)))
}
func (c *ReportsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard/stats", c.RequireAuth(c.handleDashboardStats))
	mux.HandleFunc("GET /api/reports/workflows.csv", c.RequireAuth(c.RequireRole(privilegedRoles, c.handleWorkflowsCSV)))
	mux.HandleFunc("GET /api/reports/workflows.xlsx", c.RequireAuth(c.RequireRole(privilegedRoles, c.handleWorkflowsXLSX)))
	mux.HandleFunc("GET /api/reports/users.csv", c.RequireAuth(c.RequireRole(userManagers, c.handleUsersCSV)))
}
