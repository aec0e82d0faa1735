package graph

import (
	"context"
	"fmt"

	"github.com/rallypoint-io/rallypoint-core/internal/auth"
	"github.com/rallypoint-io/rallypoint-core/internal/device"
	"github.com/rallypoint-io/rallypoint-core/internal/org"
)

// Traversals rooted at the caller's own identity. Each just needs a
// resolved user; the caller can always see their own data.

// Me returns the authenticated caller.
func (g *Graph) Me(ctx context.Context, rc *auth.RequestContext) (*auth.User, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	return g.requireUser(ctx, rc)
}

// MyDevice returns the device the request originated from.
func (g *Graph) MyDevice(ctx context.Context, rc *auth.RequestContext) (*device.Device, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	return rc.Device(ctx)
}

// MyGroups returns the groups the caller belongs to.
func (g *Graph) MyGroups(ctx context.Context, rc *auth.RequestContext) ([]org.Group, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	user, err := g.requireUser(ctx, rc)
	if err != nil {
		return nil, err
	}
	return g.groups.ListByUser(ctx, user.ID)
}

// MyEvents returns the events the caller is invited to or attending.
func (g *Graph) MyEvents(ctx context.Context, rc *auth.RequestContext) ([]org.Event, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	user, err := g.requireUser(ctx, rc)
	if err != nil {
		return nil, err
	}
	return g.events.ListByUser(ctx, user.ID)
}

// MyDevices returns every device bound to the caller's account.
func (g *Graph) MyDevices(ctx context.Context, rc *auth.RequestContext) ([]*device.Device, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	user, err := g.requireUser(ctx, rc)
	if err != nil {
		return nil, err
	}
	return g.devices.ListByUser(ctx, user.ID)
}

// MyOrganisation returns the caller's organisation.
func (g *Graph) MyOrganisation(ctx context.Context, rc *auth.RequestContext) (*org.Organisation, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	user, err := g.requireUser(ctx, rc)
	if err != nil {
		return nil, err
	}

	o, err := g.orgs.GetByID(ctx, user.OrganisationID)
	if err != nil {
		return nil, fmt.Errorf("loading caller organisation: %w", err)
	}
	return o, nil
}

// MyTags returns the tags attached to the caller.
func (g *Graph) MyTags(ctx context.Context, rc *auth.RequestContext) ([]org.Tag, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	user, err := g.requireUser(ctx, rc)
	if err != nil {
		return nil, err
	}
	return g.tags.ListByUser(ctx, user.ID)
}

// MyCapabilities returns the caller's effective capability set: direct
// grants plus grants inherited through group membership.
func (g *Graph) MyCapabilities(ctx context.Context, rc *auth.RequestContext) ([]org.Capability, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	user, err := g.requireUser(ctx, rc)
	if err != nil {
		return nil, err
	}
	return g.capabilities.ListEffectiveForUser(ctx, user.ID)
}

// MySchedules returns the caller's personal schedules. Per-user
// schedules are not modelled yet; schedules attach to groups, so this
// is an intentional empty result rather than an error.
func (g *Graph) MySchedules(ctx context.Context, rc *auth.RequestContext) ([]org.Schedule, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	if _, err := g.requireUser(ctx, rc); err != nil {
		return nil, err
	}
	return []org.Schedule{}, nil
}
