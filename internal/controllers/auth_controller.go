package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/RealZimboGuy/approvalflow/internal/auth"
	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/RealZimboGuy/approvalflow/internal/engine"
	"github.com/RealZimboGuy/approvalflow/internal/util"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/core"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/models"
)

type AuthController struct {
	UserRepo       engine.UserRepo
	Tokens         *auth.TokenService
	RequestTimeout time.Duration
}

func NewAuthController(userRepo engine.UserRepo, tokens *auth.TokenService, requestTimeout time.Duration) *AuthController {
	return &AuthController{UserRepo: userRepo, Tokens: tokens, RequestTimeout: requestTimeout}
}

// RequireAuth resolves the caller from a bearer token or an X-API-Key header and
// puts the identity into the request context. The handler then runs under the
// configured request timeout.
func (c *AuthController) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := c.authenticate(r)
		if !ok {
			util.WriteError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		ctx := core.WithIdentity(r.Context(), core.Identity{UserID: u.ID, Username: u.Username, Role: u.Role})
		if c.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.RequestTimeout)
			defer cancel()
		}
		next(w, r.WithContext(ctx))
	}
}

func (c *AuthController) authenticate(r *http.Request) (*domain.User, bool) {
	var (
		u   *domain.User
		err error
	)
	// 1) Bearer token issued by /api/auth/login
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") && c.Tokens != nil {
		userID, _, perr := c.Tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if perr != nil {
			slog.DebugContext(r.Context(), "Rejected bearer token", "error", perr)
			return nil, false
		}
		u, err = c.UserRepo.FindByID(r.Context(), userID)
	} else if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		// 2) API key
		u, err = c.UserRepo.FindByApiKey(r.Context(), apiKey)
	} else {
		return nil, false
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to look up caller", "error", err)
		return nil, false
	}
	if u == nil || !u.IsEnabled() {
		return nil, false
	}
	return u, true
}

// RequireRole must be wrapped by RequireAuth.
func (c *AuthController) RequireRole(roles []pubdomain.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := core.IdentityFrom(r.Context())
		if !ok || !slices.Contains(roles, id.Role) {
			writeForbidden(w)
			return
		}
		next(w, r)
	}
}

func (c *AuthController) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.LoginRequest](r)
	if err != nil || req.Username == "" || req.Password == "" {
		util.WriteError(w, http.StatusBadRequest, codeBadRequest, "username and password are required")
		return
	}
	u, err := c.UserRepo.FindByUsername(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if u == nil || !u.IsEnabled() || !auth.CheckPassword(u.Password, req.Password) {
		slog.InfoContext(r.Context(), "Login failed", "username", req.Username)
		util.WriteError(w, http.StatusUnauthorized, codeUnauthorized, "invalid username or password")
		return
	}
	token, expires, err := c.Tokens.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "Login succeeded", "username", u.Username)
	util.WriteJSONResponse(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
		User:      userSummary(u),
	})
}

func (c *AuthController) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := core.IdentityFrom(r.Context())
	u, err := c.UserRepo.FindByID(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if u == nil {
		util.WriteError(w, http.StatusNotFound, codeNotFound, "user not found")
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, userView(u))
}

// handleChangePassword lets any authenticated user replace their own password.
func (c *AuthController) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.ChangePasswordRequest](r)
	if err != nil || req.OldPassword == "" {
		util.WriteError(w, http.StatusBadRequest, codeBadRequest, "oldPassword and newPassword are required")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		util.WriteError(w, http.StatusBadRequest, codeBadRequest, "password must be at least 6 characters")
		return
	}
	caller := identity(r)
	u, err := c.UserRepo.FindByID(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if u == nil {
		util.WriteError(w, http.StatusNotFound, codeNotFound, "user not found")
		return
	}
	if !auth.CheckPassword(u.Password, req.OldPassword) {
		slog.InfoContext(r.Context(), "Password change rejected", "username", u.Username)
		util.WriteError(w, http.StatusBadRequest, codeBadRequest, "invalid old password")
		return
	}
	if u.Password, err = auth.HashPassword(req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := c.UserRepo.Update(r.Context(), u); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "Password changed", "username", u.Username)
	w.WriteHeader(http.StatusNoContent)
}

func identity(r *http.Request) core.Identity {
	id, _ := core.IdentityFrom(r.Context())
	return id
}
