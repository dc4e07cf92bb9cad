package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleReviewer Role = "REVIEWER"
	RoleUser     Role = "USER"

	// RoleSystem is only ever used as the actor of automatic changes, users cannot hold it.
	RoleSystem Role = "SYSTEM"
)

var AllRoles = []Role{RoleAdmin, RoleManager, RoleReviewer, RoleUser}

func (r Role) String() string { return string(r) }

// Privileged roles may act on and see workflows they did not create.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleReviewer
}

// ParseRole is case-insensitive. VIEWER is accepted as an older name for USER.
func ParseRole(text string) (Role, error) {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if upper == "VIEWER" {
		return RoleUser, nil
	}
	for _, r := range AllRoles {
		if Role(upper) == r {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", text)
}
