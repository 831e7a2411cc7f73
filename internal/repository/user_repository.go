package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User mirrors the 'users' table. IDs are opaque store-assigned UUIDs; the
// email column carries a unique index and doubles as the SCIM userName.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserFields holds the writable columns of a user, used for create and
// full replace.
type UserFields struct {
	FirstName string
	LastName  string
	Email     string
	Active    bool
}

// UserUpdate is a partial update. Nil fields are left untouched.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Active    *bool
}

// IsZero reports whether the update names no columns at all.
func (u UserUpdate) IsZero() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.Active == nil
}

// ListParams selects a page of rows with an optional equality predicate.
// Field must be a column name chosen by the query planner, never raw
// client input.
type ListParams struct {
	Offset int
	Limit  int
	Field  string
	Value  string
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,first_name,last_name,email,active,created_at,updated_at"

// Find returns a page of users, optionally restricted by an equality
// predicate on a single column. Rows come back in insertion order.
func (r *UserRepo) Find(ctx context.Context, p ListParams) ([]User, error) {
	q := "SELECT " + userColumns + " FROM users"
	args := []any{}
	if p.Field != "" {
		q += " WHERE " + p.Field + "=?"
		args = append(args, p.Value)
	}
	q += " ORDER BY created_at,id LIMIT ? OFFSET ?"
	args = append(args, p.Limit, p.Offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// FindByID fetches a user by id, returning ErrNotFound when absent.
func (r *UserRepo) FindByID(ctx context.Context, id string) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// Create inserts a user with a fresh UUID and returns the stored record.
// A duplicate email maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, f UserFields) (User, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, first_name, last_name, email, active) VALUES (?,?,?,?,?)",
		id, f.FirstName, f.LastName, strings.ToLower(strings.TrimSpace(f.Email)), f.Active)
	if err != nil {
		if isDuplicateEntry(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return r.FindByID(ctx, id)
}

// Update applies a partial update and returns the resulting record. An
// unknown id maps to ErrNotFound; an empty update degenerates to a fetch.
func (r *UserRepo) Update(ctx context.Context, id string, u UserUpdate) (User, error) {
	set := []string{}
	args := []any{}
	if u.FirstName != nil {
		set = append(set, "first_name=?")
		args = append(args, *u.FirstName)
	}
	if u.LastName != nil {
		set = append(set, "last_name=?")
		args = append(args, *u.LastName)
	}
	if u.Email != nil {
		set = append(set, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*u.Email)))
	}
	if u.Active != nil {
		set = append(set, "active=?")
		args = append(args, *u.Active)
	}
	if len(set) > 0 {
		args = append(args, id)
		q := "UPDATE users SET " + strings.Join(set, ",") + " WHERE id=?"
		if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
			if isDuplicateEntry(err) {
				return User{}, ErrEmailExists
			}
			return User{}, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes a user by id. Deleting an absent id is not an error.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return err
}

// Count returns the total number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// CountByEmail returns the number of users holding the given primary email.
// Used for the pre-insert uniqueness check on create.
func (r *UserRepo) CountByEmail(ctx context.Context, email string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=?",
		strings.ToLower(strings.TrimSpace(email))).Scan(&n)
	return n, err
}
