package approvalflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/RealZimboGuy/approvalflow/internal/auth"
	"github.com/RealZimboGuy/approvalflow/internal/config"
	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/RealZimboGuy/approvalflow/internal/engine"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

var demoUsers = []struct {
	username string
	role     pubdomain.Role
}{
	{"manager", pubdomain.RoleManager},
	{"reviewer", pubdomain.RoleReviewer},
	{"viewer", pubdomain.RoleUser},
}

// seedUsers creates the admin account on an empty users table. Demo accounts,
// with password "<username>123", are added when auth.seed_demo_users is set.
func seedUsers(ctx context.Context, users engine.UserRepo) error {
	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := config.GetSystemSettingString(config.AUTH_ADMIN_PASSWORD)
	if password == "" {
		password = randomSecret(12)
		slog.Warn("No admin password configured, generated one for this first start", "username", "admin", "password", password)
	}
	if err := createUser(ctx, users, "admin", password, pubdomain.RoleAdmin); err != nil {
		return err
	}

	if !config.GetSystemSettingBool(config.AUTH_SEED_DEMO_USERS) {
		return nil
	}
	for _, demo := range demoUsers {
		if err := createUser(ctx, users, demo.username, demo.username+"123", demo.role); err != nil {
			return err
		}
	}
	slog.Info("Seeded demo users", "count", len(demoUsers))
	return nil
}

func createUser(ctx context.Context, users engine.UserRepo, username, password string, role pubdomain.Role) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u := &domain.User{
		Username:  username,
		Password:  hash,
		Email:     username + "@approvalflow.local",
		FirstName: strings.ToUpper(username[:1]) + username[1:],
		Role:      role,
	}
	if _, err := users.Save(ctx, u); err != nil {
		return err
	}
	slog.Info("Created user", "username", username, "role", role)
	return nil
}

func randomSecret(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
