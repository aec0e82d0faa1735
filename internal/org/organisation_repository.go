package org

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// OrganisationRepository defines persistence for organisations.
type OrganisationRepository interface {
	Create(ctx context.Context, o *Organisation) error
	GetByID(ctx context.Context, id string) (*Organisation, error)
	GetByName(ctx context.Context, name string) (*Organisation, error)
	Count(ctx context.Context) (int, error)
}

// SQLiteOrganisationRepository implements OrganisationRepository using
// SQLite.
type SQLiteOrganisationRepository struct {
	db *sql.DB
}

// NewOrganisationRepository creates a new SQLite-backed organisation
// repository.
func NewOrganisationRepository(db *sql.DB) *SQLiteOrganisationRepository {
	return &SQLiteOrganisationRepository{db: db}
}

const organisationColumns = "id, name, COALESCE(created_by, ''), created_at, updated_at"

// Create inserts a new organisation. Duplicate names map to ErrConflict.
func (r *SQLiteOrganisationRepository) Create(ctx context.Context, o *Organisation) error {
	if o.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if o.ID == "" {
		o.ID = "org-" + uuid.NewString()[:8]
	}

	now := nowRFC3339()
	o.CreatedAt = parseStored(now)
	o.UpdatedAt = o.CreatedAt

	var createdBy any
	if o.CreatedBy != "" {
		createdBy = o.CreatedBy
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organisations (id, name, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		o.ID, o.Name, createdBy, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("creating organisation: %w", err)
	}

	return nil
}

// GetByID retrieves an organisation by ID.
func (r *SQLiteOrganisationRepository) GetByID(ctx context.Context, id string) (*Organisation, error) {
	return scanOrganisation(r.db.QueryRowContext(ctx,
		"SELECT "+organisationColumns+" FROM organisations WHERE id = ?", id))
}

// GetByName retrieves an organisation by its unique name.
func (r *SQLiteOrganisationRepository) GetByName(ctx context.Context, name string) (*Organisation, error) {
	return scanOrganisation(r.db.QueryRowContext(ctx,
		"SELECT "+organisationColumns+" FROM organisations WHERE name = ?", name))
}

// Count returns the total number of organisations.
func (r *SQLiteOrganisationRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM organisations").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting organisations: %w", err)
	}
	return count, nil
}

func scanOrganisation(s scanner) (*Organisation, error) {
	var o Organisation
	var createdAt, updatedAt string

	err := s.Scan(&o.ID, &o.Name, &o.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning organisation: %w", err)
	}

	o.CreatedAt = parseStored(createdAt)
	o.UpdatedAt = parseStored(updatedAt)
	return &o, nil
}
