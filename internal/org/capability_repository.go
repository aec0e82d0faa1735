package org

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// CapabilityRepository defines persistence for capabilities and grants.
type CapabilityRepository interface {
	Create(ctx context.Context, c *Capability) error
	ListByOrganisation(ctx context.Context, orgID string) ([]Capability, error)
	ListByGroup(ctx context.Context, groupID string) ([]Capability, error)
	// ListEffectiveForUser returns the union of the capabilities
	// granted to the user directly and through group membership.
	ListEffectiveForUser(ctx context.Context, userID string) ([]Capability, error)
	GrantToUser(ctx context.Context, capabilityID, userID string) error
	GrantToGroup(ctx context.Context, capabilityID, groupID string) error
}

// SQLiteCapabilityRepository implements CapabilityRepository using
// SQLite.
type SQLiteCapabilityRepository struct {
	db *sql.DB
}

// NewCapabilityRepository creates a new SQLite-backed capability
// repository.
func NewCapabilityRepository(db *sql.DB) *SQLiteCapabilityRepository {
	return &SQLiteCapabilityRepository{db: db}
}

// Create inserts a new capability.
func (r *SQLiteCapabilityRepository) Create(ctx context.Context, c *Capability) error {
	if c.Label == "" || c.OrganisationID == "" {
		return fmt.Errorf("%w: label and organisation required", ErrInvalidInput)
	}
	if c.ID == "" {
		c.ID = "cap-" + uuid.NewString()[:8]
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO capabilities (id, label, organisation_id) VALUES (?, ?, ?)`,
		c.ID, c.Label, c.OrganisationID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("creating capability: %w", err)
	}
	return nil
}

// ListByOrganisation returns all capabilities defined in an
// organisation.
func (r *SQLiteCapabilityRepository) ListByOrganisation(ctx context.Context, orgID string) ([]Capability, error) {
	return r.listCapabilities(ctx,
		"SELECT id, label, organisation_id FROM capabilities WHERE organisation_id = ? ORDER BY label ASC", orgID)
}

// ListByGroup returns the capabilities granted to a group.
func (r *SQLiteCapabilityRepository) ListByGroup(ctx context.Context, groupID string) ([]Capability, error) {
	return r.listCapabilities(ctx,
		`SELECT c.id, c.label, c.organisation_id
		 FROM capabilities c JOIN group_capabilities gc ON gc.capability_id = c.id
		 WHERE gc.group_id = ? ORDER BY c.label ASC`, groupID)
}

// ListEffectiveForUser returns the deduplicated union of direct grants
// and grants inherited from the user's groups.
func (r *SQLiteCapabilityRepository) ListEffectiveForUser(ctx context.Context, userID string) ([]Capability, error) {
	return r.listCapabilities(ctx,
		`SELECT c.id, c.label, c.organisation_id
		 FROM capabilities c JOIN user_capabilities uc ON uc.capability_id = c.id
		 WHERE uc.user_id = ?
		 UNION
		 SELECT c.id, c.label, c.organisation_id
		 FROM capabilities c
		 JOIN group_capabilities gc ON gc.capability_id = c.id
		 JOIN group_members gm ON gm.group_id = gc.group_id
		 WHERE gm.user_id = ?
		 ORDER BY label ASC`, userID, userID)
}

// GrantToUser grants a capability directly to a user. Repeated grants
// are a no-op.
func (r *SQLiteCapabilityRepository) GrantToUser(ctx context.Context, capabilityID, userID string) error {
	return r.grant(ctx,
		"INSERT INTO user_capabilities (user_id, capability_id) VALUES (?, ?)", userID, capabilityID)
}

// GrantToGroup grants a capability to every member of a group, present
// and future. Repeated grants are a no-op.
func (r *SQLiteCapabilityRepository) GrantToGroup(ctx context.Context, capabilityID, groupID string) error {
	return r.grant(ctx,
		"INSERT INTO group_capabilities (group_id, capability_id) VALUES (?, ?)", groupID, capabilityID)
}

func (r *SQLiteCapabilityRepository) grant(ctx context.Context, query string, args ...any) error {
	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("granting capability: %w", err)
	}
	return nil
}

func (r *SQLiteCapabilityRepository) listCapabilities(ctx context.Context, query string, args ...any) ([]Capability, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing capabilities: %w", err)
	}
	defer rows.Close()

	capabilities := []Capability{}
	for rows.Next() {
		var c Capability
		if err := rows.Scan(&c.ID, &c.Label, &c.OrganisationID); err != nil {
			return nil, fmt.Errorf("scanning capability: %w", err)
		}
		capabilities = append(capabilities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating capabilities: %w", err)
	}

	return capabilities, nil
}
