package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/core"
	pubdomain "github.com/RealZimboGuy/approvalflow/pkg/approvalflow/domain"
)

// UserRepository provides persistence methods for the users table.
type UserRepository struct {
	db    *sql.DB
	clock core.Clock
}

const USER_COLUMNS = ` id, username, password, email, first_name, last_name, role, api_key, created, enabled `

func NewUserRepository(db *sql.DB, clock core.Clock) *UserRepository {
	return &UserRepository{db: db, clock: clock}
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Password,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&role,
		&u.ApiKey,
		&u.Created,
		&u.Enabled,
	); err != nil {
		return nil, err
	}
	u.Role = pubdomain.Role(role)
	return &u, nil
}

// Save inserts a new user and returns its generated id.
// It will set Created to now if it's not provided.
func (r *UserRepository) Save(ctx context.Context, u *domain.User) (int64, error) {
	if !u.Created.Valid {
		u.Created = sql.NullTime{Time: r.clock.Now().UTC(), Valid: true}
	}
	if !u.Enabled.Valid {
		u.Enabled = sql.NullBool{Bool: true, Valid: true}
	}
	vals := []any{u.Username, u.Password, u.Email, u.FirstName, u.LastName, string(u.Role), u.ApiKey,
		formatDateInDatabaseNull(u.Created), u.Enabled}
	base := `
        INSERT INTO users (username, password, email, first_name, last_name, role, api_key, created, enabled)
        VALUES (` + placeholders(len(vals)) + `)`

	id, err := insertReturningID(ctx, r.db, base, vals...)
	if err != nil {
		return 0, fmt.Errorf("insert user %s: %w", u.Username, err)
	}
	u.ID = id
	return id, nil
}

// findOne returns (nil, nil) when no row matches.
func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + USER_COLUMNS + ` FROM users WHERE ` + where + ` = ` + placeholder(1)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByID returns (nil, nil) if not found.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, "id", id)
}

// FindByUsername fetches a user by exact username. Returns (nil, nil) if not found.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username", username)
}

// FindByApiKey fetches a user by api_key (exact match). Returns (nil, nil) if not found.
func (r *UserRepository) FindByApiKey(ctx context.Context, apiKey string) (*domain.User, error) {
	return r.findOne(ctx, "api_key", apiKey)
}

// FindAll returns all users ordered by id ascending.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+USER_COLUMNS+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// FindByIDs loads the given users keyed by id, ids that do not exist are absent from the map.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.User, error) {
	out := make(map[int64]domain.User, len(ids))
	for _, id := range ids {
		if _, seen := out[id]; seen {
			continue
		}
		u, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			out[id] = *u
		}
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// Update writes the profile fields, role, enabled flag and password hash of an existing user.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
        UPDATE users
        SET email = ` + placeholder(1) + `, first_name = ` + placeholder(2) + `, last_name = ` + placeholder(3) + `,
            role = ` + placeholder(4) + `, enabled = ` + placeholder(5) + `, password = ` + placeholder(6) + `
        WHERE id = ` + placeholder(7)
	res, err := r.db.ExecContext(ctx, query, u.Email, u.FirstName, u.LastName, string(u.Role), u.Enabled, u.Password, u.ID)
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", u.ID, pubdomain.ErrNotFound)
	}
	return nil
}

// UpdateApiKey sets or clears (empty key) the api key of a user.
func (r *UserRepository) UpdateApiKey(ctx context.Context, userID int64, apiKey string) error {
	key := sql.NullString{String: apiKey, Valid: apiKey != ""}
	_, err := r.db.ExecContext(ctx, `UPDATE users SET api_key = `+placeholder(1)+` WHERE id = `+placeholder(2), key, userID)
	return err
}
