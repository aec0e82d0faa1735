package org

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// TagRepository defines persistence for tags and their attachments.
type TagRepository interface {
	Create(ctx context.Context, t *Tag) error
	ListByOrganisation(ctx context.Context, orgID string) ([]Tag, error)
	ListByUser(ctx context.Context, userID string) ([]Tag, error)
	ListByGroup(ctx context.Context, groupID string) ([]Tag, error)
	TagUser(ctx context.Context, tagID, userID string) error
	TagGroup(ctx context.Context, tagID, groupID string) error
}

// SQLiteTagRepository implements TagRepository using SQLite.
type SQLiteTagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new SQLite-backed tag repository.
func NewTagRepository(db *sql.DB) *SQLiteTagRepository {
	return &SQLiteTagRepository{db: db}
}

// Create inserts a new tag.
func (r *SQLiteTagRepository) Create(ctx context.Context, t *Tag) error {
	if t.Label == "" || t.OrganisationID == "" {
		return fmt.Errorf("%w: label and organisation required", ErrInvalidInput)
	}
	if t.ID == "" {
		t.ID = "tag-" + uuid.NewString()[:8]
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tags (id, label, organisation_id) VALUES (?, ?, ?)`,
		t.ID, t.Label, t.OrganisationID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("creating tag: %w", err)
	}
	return nil
}

// ListByOrganisation returns all tags defined in an organisation.
func (r *SQLiteTagRepository) ListByOrganisation(ctx context.Context, orgID string) ([]Tag, error) {
	return r.listTags(ctx,
		"SELECT id, label, organisation_id FROM tags WHERE organisation_id = ? ORDER BY label ASC", orgID)
}

// ListByUser returns the tags attached to a user.
func (r *SQLiteTagRepository) ListByUser(ctx context.Context, userID string) ([]Tag, error) {
	return r.listTags(ctx,
		`SELECT t.id, t.label, t.organisation_id
		 FROM tags t JOIN user_tags ut ON ut.tag_id = t.id
		 WHERE ut.user_id = ? ORDER BY t.label ASC`, userID)
}

// ListByGroup returns the tags attached to a group.
func (r *SQLiteTagRepository) ListByGroup(ctx context.Context, groupID string) ([]Tag, error) {
	return r.listTags(ctx,
		`SELECT t.id, t.label, t.organisation_id
		 FROM tags t JOIN group_tags gt ON gt.tag_id = t.id
		 WHERE gt.group_id = ? ORDER BY t.label ASC`, groupID)
}

// TagUser attaches a tag to a user. Repeated attachment is a no-op.
func (r *SQLiteTagRepository) TagUser(ctx context.Context, tagID, userID string) error {
	return r.attach(ctx,
		"INSERT INTO user_tags (user_id, tag_id) VALUES (?, ?)", userID, tagID)
}

// TagGroup attaches a tag to a group. Repeated attachment is a no-op.
func (r *SQLiteTagRepository) TagGroup(ctx context.Context, tagID, groupID string) error {
	return r.attach(ctx,
		"INSERT INTO group_tags (group_id, tag_id) VALUES (?, ?)", groupID, tagID)
}

func (r *SQLiteTagRepository) attach(ctx context.Context, query string, args ...any) error {
	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("attaching tag: %w", err)
	}
	return nil
}

func (r *SQLiteTagRepository) listTags(ctx context.Context, query string, args ...any) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Label, &t.OrganisationID); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return tags, nil
}
