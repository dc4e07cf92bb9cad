package controllers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/RealZimboGuy/approvalflow/internal/auth"
	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/RealZimboGuy/approvalflow/internal/util"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/models"
	"github.com/google/uuid"
)

const minPasswordLength = 6

type UsersController struct {
	*AuthController
}

func NewUsersController(authController *AuthController) *UsersController {
	return &UsersController{AuthController: authController}
}

func (c *UsersController) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.UserRepo.FindAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, userView(&users[i]))
	}
	util.WriteJSONResponse(w, http.StatusOK, views)
}

// loadUser writes the error response itself and returns nil when the user cannot be served.
func (c *UsersController) loadUser(w http.ResponseWriter, r *http.Request) *domain.User {
	id, ok := pathID(r)
	if !ok {
		writeBadID(w)
		return nil
	}
	u, err := c.UserRepo.FindByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return nil
	}
	if u == nil {
		util.WriteError(w, http.StatusNotFound, codeNotFound, "user not found")
		return nil
	}
	return u
}

// handleGetUserById serves admins, managers and the user themselves.
func (c *UsersController) handleGetUserById(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	u := c.loadUser(w, r)
	if u == nil {
		return
	}
	if u.ID != caller.UserID && caller.Role != pubdomain.RoleAdmin && caller.Role != pubdomain.RoleManager {
		writeForbidden(w)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, userView(u))
}

func (c *UsersController) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.CreateUserRequest](r)
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Password) < minPasswordLength {
		util.WriteError(w, http.StatusBadRequest, codeBadRequest, "username and a password of at least 6 characters are required")
		return
	}
	role := pubdomain.RoleUser
	if req.Role != "" {
		if role, err = pubdomain.ParseRole(req.Role); err != nil {
			util.WriteError(w, http.StatusBadRequest, codeBadRequest, err.Error())
			return
		}
	}

	existing, err := c.UserRepo.FindByUsername(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if existing != nil {
		util.WriteError(w, http.StatusConflict, codeConflict, "username already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	u := &domain.User{
		Username:  req.Username,
		Password:  hash,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		Enabled:   sql.NullBool{Bool: true, Valid: true},
	}
	if _, err := c.UserRepo.Save(r.Context(), u); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "User created", "username", u.Username, "role", u.Role, "by", identity(r).Username)
	util.WriteJSONResponse(w, http.StatusCreated, userView(u))
}

func (c *UsersController) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	u := c.loadUser(w, r)
	if u == nil {
		return
	}
	req, err := util.DecodeJSONBody[models.UpdateUserRequest](r)
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Role != nil {
		role, err := pubdomain.ParseRole(*req.Role)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, codeBadRequest, err.Error())
			return
		}
		u.Role = role
	}
	if req.Enabled != nil {
		u.Enabled = sql.NullBool{Bool: *req.Enabled, Valid: true}
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			util.WriteError(w, http.StatusBadRequest, codeBadRequest, "password must be at least 6 characters")
			return
		}
		if u.Password, err = auth.HashPassword(*req.Password); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	if err := c.UserRepo.Update(r.Context(), u); err != nil {
		writeServiceError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, userView(u))
}

// handleDeleteUser disables the account, workflows keep pointing at their creator.
func (c *UsersController) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	u := c.loadUser(w, r)
	if u == nil {
		return
	}
	if u.ID == identity(r).UserID {
		util.WriteError(w, http.StatusBadRequest, codeBadRequest, "you cannot disable your own account")
		return
	}
	u.Enabled = sql.NullBool{Bool: false, Valid: true}
	if err := c.UserRepo.Update(r.Context(), u); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "User disabled", "username", u.Username, "by", identity(r).Username)
	w.WriteHeader(http.StatusNoContent)
}

// handleRotateApiKey issues a new API key for the user, admins may do this for anyone.
func (c *UsersController) handleRotateApiKey(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	u := c.loadUser(w, r)
	if u == nil {
		return
	}
	if u.ID != caller.UserID && caller.Role != pubdomain.RoleAdmin {
		writeForbidden(w)
		return
	}
	key := uuid.NewString()
	if err := c.UserRepo.UpdateApiKey(r.Context(), u.ID, key); err != nil {
		writeServiceError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, models.ApiKeyResponse{ApiKey: key})
}
