package domain

import (
	"database/sql"

	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

type User struct {
	ID        int64          `json:"id"`
	Username  string         `json:"username"`
	Password  string         `json:"password"`
	Email     string         `json:"email"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      domain.Role    `json:"role"`
	ApiKey    sql.NullString `json:"apiKey"`
	Created   sql.NullTime   `json:"created"`
	Enabled   sql.NullBool   `json:"enabled"`
}

func (u *User) IsEnabled() bool {
	return u.Enabled.Valid && u.Enabled.Bool
}
