package org

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rallypoint-io/rallypoint-core/internal/auth"
)

// GroupRepository defines persistence for groups and their membership.
type GroupRepository interface {
	Create(ctx context.Context, g *Group) error
	GetByID(ctx context.Context, id string) (*Group, error)
	ListByOrganisation(ctx context.Context, orgID string) ([]Group, error)
	ListByUser(ctx context.Context, userID string) ([]Group, error)
	AddMember(ctx context.Context, groupID, userID string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	Members(ctx context.Context, groupID string) ([]auth.User, error)
}

// SQLiteGroupRepository implements GroupRepository using SQLite.
type SQLiteGroupRepository struct {
	db *sql.DB
}

// NewGroupRepository creates a new SQLite-backed group repository.
func NewGroupRepository(db *sql.DB) *SQLiteGroupRepository {
	return &SQLiteGroupRepository{db: db}
}

const groupColumns = "id, name, organisation_id, COALESCE(created_by, ''), created_at"

// Create inserts a new group. The creator is automatically added as the
// first member so a freshly created group is never orphaned.
func (r *SQLiteGroupRepository) Create(ctx context.Context, g *Group) error {
	if g.Name == "" || g.OrganisationID == "" {
		return fmt.Errorf("%w: name and organisation required", ErrInvalidInput)
	}
	if g.ID == "" {
		g.ID = "grp-" + uuid.NewString()[:8]
	}

	now := nowRFC3339()
	g.CreatedAt = parseStored(now)

	var createdBy any
	if g.CreatedBy != "" {
		createdBy = g.CreatedBy
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, organisation_id, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.OrganisationID, createdBy, now,
	)
	if err != nil {
		return fmt.Errorf("creating group: %w", err)
	}

	if g.CreatedBy != "" {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id, created_at) VALUES (?, ?, ?)`,
			g.ID, g.CreatedBy, now,
		)
		if err != nil {
			return fmt.Errorf("adding creator to group: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing group create: %w", err)
	}
	return nil
}

// GetByID retrieves a group by ID.
func (r *SQLiteGroupRepository) GetByID(ctx context.Context, id string) (*Group, error) {
	return scanGroup(r.db.QueryRowContext(ctx,
		"SELECT "+groupColumns+" FROM groups WHERE id = ?", id))
}

// ListByOrganisation returns all groups in an organisation.
func (r *SQLiteGroupRepository) ListByOrganisation(ctx context.Context, orgID string) ([]Group, error) {
	return r.listGroups(ctx,
		"SELECT "+groupColumns+" FROM groups WHERE organisation_id = ? ORDER BY created_at ASC", orgID)
}

// ListByUser returns the groups a user is a member of.
func (r *SQLiteGroupRepository) ListByUser(ctx context.Context, userID string) ([]Group, error) {
	return r.listGroups(ctx,
		`SELECT g.id, g.name, g.organisation_id, COALESCE(g.created_by, ''), g.created_at
		 FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = ?
		 ORDER BY g.created_at ASC`, userID)
}

// AddMember adds a user to a group. Adding an existing member is a
// no-op rather than an error; membership is a set.
func (r *SQLiteGroupRepository) AddMember(ctx context.Context, groupID, userID string) error {
	if groupID == "" || userID == "" {
		return ErrInvalidInput
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, created_at) VALUES (?, ?, ?)`,
		groupID, userID, nowRFC3339(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("adding group member: %w", err)
	}
	return nil
}

// IsMember reports whether a user belongs to a group.
func (r *SQLiteGroupRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking group membership: %w", err)
	}
	return true, nil
}

// Members returns the users in a group, ordered by when they joined.
func (r *SQLiteGroupRepository) Members(ctx context.Context, groupID string) ([]auth.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.username, u.email, u.password_hash, u.version, u.organisation_id, u.created_at, u.updated_at
		 FROM users u
		 JOIN group_members gm ON gm.user_id = u.id
		 WHERE gm.group_id = ?
		 ORDER BY gm.created_at ASC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing group members: %w", err)
	}
	defer rows.Close()

	users := []auth.User{}
	for rows.Next() {
		var u auth.User
		var createdAt, updatedAt string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
			&u.Version, &u.OrganisationID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning group member: %w", err)
		}
		u.CreatedAt = parseStored(createdAt)
		u.UpdatedAt = parseStored(updatedAt)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating group members: %w", err)
	}

	return users, nil
}

func (r *SQLiteGroupRepository) listGroups(ctx context.Context, query string, args ...any) ([]Group, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	groups := []Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating groups: %w", err)
	}

	return groups, nil
}

func scanGroup(s scanner) (*Group, error) {
	var g Group
	var createdAt string

	err := s.Scan(&g.ID, &g.Name, &g.OrganisationID, &g.CreatedBy, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning group: %w", err)
	}

	g.CreatedAt = parseStored(createdAt)
	return &g, nil
}
