package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Group mirrors the 'groups' table. Name maps to the SCIM displayName.
type Group struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type GroupRepo struct{ DB *sql.DB }

func NewGroupRepo(db *sql.DB) *GroupRepo { return &GroupRepo{DB: db} }

// groups is a reserved word in MySQL 8, hence the backticked table name
// in every query below.
const groupColumns = "id,name,created_at,updated_at"

// Find returns a page of groups, optionally restricted by an equality
// predicate on a single column chosen by the query planner.
func (r *GroupRepo) Find(ctx context.Context, p ListParams) ([]Group, error) {
	q := "SELECT " + groupColumns + " FROM `groups`"
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

	groups := []Group{}
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// FindByID fetches a group by id, returning ErrNotFound when absent.
func (r *GroupRepo) FindByID(ctx context.Context, id string) (Group, error) {
	var g Group
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+groupColumns+" FROM `groups` WHERE id=? LIMIT 1", id).
		Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Group{}, ErrNotFound
	}
	return g, err
}

// Create inserts a group with a fresh UUID and returns the stored record.
func (r *GroupRepo) Create(ctx context.Context, name string) (Group, error) {
	id := uuid.NewString()
	if _, err := r.DB.ExecContext(ctx,
		"INSERT INTO `groups` (id, name) VALUES (?,?)", id, name); err != nil {
		return Group{}, err
	}
	return r.FindByID(ctx, id)
}

// UpdateName replaces a group's name and returns the resulting record. An
// unknown id maps to ErrNotFound.
func (r *GroupRepo) UpdateName(ctx context.Context, id, name string) (Group, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE `groups` SET name=? WHERE id=?", name, id); err != nil {
		return Group{}, err
	}
	return r.FindByID(ctx, id)
}

// Delete removes a group by id. Deleting an absent id is not an error.
func (r *GroupRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM `groups` WHERE id=?", id)
	return err
}

// Count returns the total number of groups.
func (r *GroupRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM `groups`").Scan(&n)
	return n, err
}
