package graph

import (
	"context"

	"github.com/rallypoint-io/rallypoint-core/internal/auth"
	"github.com/rallypoint-io/rallypoint-core/internal/org"
)

// Organisation-rooted traversals. Tenant-wide listings expose every
// user and group in the organisation, so they are restricted to the
// organisation's own members; outsiders get a plain unauthorized.

// CreateOrganisation creates a new organisation. Requires an
// authenticated caller, who is recorded as the creator.
func (g *Graph) CreateOrganisation(ctx context.Context, rc *auth.RequestContext, name string) (*org.Organisation, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	user, err := g.requireUser(ctx, rc)
	if err != nil {
		return nil, err
	}

	o := &org.Organisation{Name: name, CreatedBy: user.ID}
	if err := g.orgs.Create(ctx, o); err != nil {
		return nil, err
	}

	g.logger.Info("organisation created",
		"organisation_id", o.ID,
		"created_by", user.ID)
	return o, nil
}

// OrganisationGroups lists the groups in an organisation.
func (g *Graph) OrganisationGroups(ctx context.Context, rc *auth.RequestContext, orgID string) ([]org.Group, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	if _, err := g.requireOrgMember(ctx, rc, orgID); err != nil {
		return nil, err
	}
	return g.groups.ListByOrganisation(ctx, orgID)
}

// OrganisationUsers lists the members of an organisation.
func (g *Graph) OrganisationUsers(ctx context.Context, rc *auth.RequestContext, orgID string) ([]auth.User, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	if _, err := g.requireOrgMember(ctx, rc, orgID); err != nil {
		return nil, err
	}
	return g.users.ListByOrganisation(ctx, orgID)
}

// OrganisationTags lists the tags defined in an organisation.
func (g *Graph) OrganisationTags(ctx context.Context, rc *auth.RequestContext, orgID string) ([]org.Tag, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	if _, err := g.requireOrgMember(ctx, rc, orgID); err != nil {
		return nil, err
	}
	return g.tags.ListByOrganisation(ctx, orgID)
}

// OrganisationCapabilities lists the capabilities defined in an
// organisation. This is the tenant's catalogue, not any user's grants.
func (g *Graph) OrganisationCapabilities(ctx context.Context, rc *auth.RequestContext, orgID string) ([]org.Capability, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	if _, err := g.requireOrgMember(ctx, rc, orgID); err != nil {
		return nil, err
	}
	return g.capabilities.ListByOrganisation(ctx, orgID)
}
