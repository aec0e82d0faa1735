package org

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultOrganisationName is the organisation created on first boot.
// New signups land here until the deployment defines its own tenants.
const DefaultOrganisationName = "Rallypoint"

// SeedDefaultOrganisation ensures the default organisation exists and
// returns its ID. Safe to call on every boot; it only creates the row
// once.
func SeedDefaultOrganisation(ctx context.Context, repo OrganisationRepository, logger *slog.Logger) (string, error) {
	existing, err := repo.GetByName(ctx, DefaultOrganisationName)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("checking default organisation: %w", err)
	}

	o := &Organisation{Name: DefaultOrganisationName}
	if err := repo.Create(ctx, o); err != nil {
		// Another instance may have seeded between the check and the
		// insert; re-read rather than fail the boot.
		if errors.Is(err, ErrConflict) {
			existing, err = repo.GetByName(ctx, DefaultOrganisationName)
			if err != nil {
				return "", fmt.Errorf("re-reading default organisation: %w", err)
			}
			return existing.ID, nil
		}
		return "", fmt.Errorf("creating default organisation: %w", err)
	}

	logger.Info("default organisation created", slog.String("organisation_id", o.ID))
	return o.ID, nil
}
