package repository

import (
	"context"
	"database/sql"
)

// MemberRole is the fixed role recorded on every membership row. The system
// has no per-membership role semantics beyond existence.
const MemberRole = "MEMBER"

// Membership mirrors the 'memberships' relation table. The composite
// primary key (group_id, user_id) keeps repeated add operations from
// accumulating duplicate rows.
type Membership struct {
	GroupID string
	UserID  string
	Role    string
}

type MembershipRepo struct{ DB *sql.DB }

func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{DB: db} }

// Create inserts a membership row. Inserting an already existing
// (group, user) pair is a no-op rather than an error, so concurrent or
// repeated add operations commute.
func (r *MembershipRepo) Create(ctx context.Context, groupID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO memberships (group_id, user_id, role) VALUES (?,?,?)",
		groupID, userID, MemberRole)
	if isDuplicateEntry(err) {
		return nil
	}
	return err
}

// DeleteByGroupAndUser removes a single membership. Absent rows are ignored.
func (r *MembershipRepo) DeleteByGroupAndUser(ctx context.Context, groupID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM memberships WHERE group_id=? AND user_id=?", groupID, userID)
	return err
}

// DeleteAllForGroup clears every membership of a group, backing the
// bare `remove members` PATCH path and group deletion.
func (r *MembershipRepo) DeleteAllForGroup(ctx context.Context, groupID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM memberships WHERE group_id=?", groupID)
	return err
}

// DeleteAllForUser clears every membership of a user, cascading user
// deletion into the relation table.
func (r *MembershipRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM memberships WHERE user_id=?", userID)
	return err
}

// CountByGroup returns how many members a group currently has.
func (r *MembershipRepo) CountByGroup(ctx context.Context, groupID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM memberships WHERE group_id=?", groupID).Scan(&n)
	return n, err
}
