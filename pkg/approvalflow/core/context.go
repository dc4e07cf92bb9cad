package core

import (
	"context"

	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

type ctxKey string

const (
	CtxKeyUserID   ctxKey = ctxKey("userId")
	CtxKeyUsername ctxKey = ctxKey("username")
	CtxKeyRole     ctxKey = ctxKey("role")
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   int64
	Username string
	Role     domain.Role
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, id.UserID)
	ctx = context.WithValue(ctx, CtxKeyUsername, id.Username)
	return context.WithValue(ctx, CtxKeyRole, id.Role)
}

// IdentityFrom returns false when the context was not populated by the auth middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	userID, ok := ctx.Value(CtxKeyUserID).(int64)
	if !ok {
		return Identity{}, false
	}
	username, _ := ctx.Value(CtxKeyUsername).(string)
	role, _ := ctx.Value(CtxKeyRole).(domain.Role)
	return Identity{UserID: userID, Username: username, Role: role}, true
}
