package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/rallypoint-io/rallypoint-core/internal/auth"
	"github.com/rallypoint-io/rallypoint-core/internal/org"
)

// Group-rooted traversals and mutations. Reads are open to anyone in
// the group's organisation; mutations that touch a group's content
// require membership.

// CreateGroup creates a group in the caller's organisation. The caller
// becomes the creator and first member.
func (g *Graph) CreateGroup(ctx context.Context, rc *auth.RequestContext, name string) (*org.Group, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	user, err := g.requireUser(ctx, rc)
	if err != nil {
		return nil, err
	}

	grp := &org.Group{
		Name:           name,
		OrganisationID: user.OrganisationID,
		CreatedBy:      user.ID,
	}
	if err := g.groups.Create(ctx, grp); err != nil {
		return nil, err
	}

	g.logger.Info("group created",
		"group_id", grp.ID,
		"created_by", user.ID)
	return grp, nil
}

// AddUserToGroup adds a user to a group. The caller must be
// authenticated and in the group's organisation; the target user must
// exist. Both lookup failures name the entity that was missing.
func (g *Graph) AddUserToGroup(ctx context.Context, rc *auth.RequestContext, groupID, userID string) (*org.Group, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	_, grp, err := g.requireGroupInCallerOrg(ctx, rc, groupID)
	if err != nil {
		return nil, err
	}

	target, err := g.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user", org.ErrNotFound)
		}
		return nil, err
	}
	// Membership never crosses tenants.
	if target.OrganisationID != grp.OrganisationID {
		return nil, fmt.Errorf("%w: user", org.ErrNotFound)
	}

	if err := g.groups.AddMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return grp, nil
}

// GroupUsers lists a group's members.
func (g *Graph) GroupUsers(ctx context.Context, rc *auth.RequestContext, groupID string) ([]auth.User, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	if _, _, err := g.requireGroupInCallerOrg(ctx, rc, groupID); err != nil {
		return nil, err
	}
	return g.groups.Members(ctx, groupID)
}

// GroupSchedules lists a group's schedules.
func (g *Graph) GroupSchedules(ctx context.Context, rc *auth.RequestContext, groupID string) ([]org.Schedule, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	if _, _, err := g.requireGroupInCallerOrg(ctx, rc, groupID); err != nil {
		return nil, err
	}
	return g.schedules.ListByGroup(ctx, groupID)
}

// GroupEvents lists a group's events.
func (g *Graph) GroupEvents(ctx context.Context, rc *auth.RequestContext, groupID string) ([]org.Event, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	if _, _, err := g.requireGroupInCallerOrg(ctx, rc, groupID); err != nil {
		return nil, err
	}
	return g.events.ListByGroup(ctx, groupID)
}

// GroupTags lists the tags attached to a group.
func (g *Graph) GroupTags(ctx context.Context, rc *auth.RequestContext, groupID string) ([]org.Tag, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	if _, _, err := g.requireGroupInCallerOrg(ctx, rc, groupID); err != nil {
		return nil, err
	}
	return g.tags.ListByGroup(ctx, groupID)
}

// CreateEvent creates an event in a group. The caller must be a member.
func (g *Graph) CreateEvent(ctx context.Context, rc *auth.RequestContext, e *org.Event) (*org.Event, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	user, _, err := g.requireGroupInCallerOrg(ctx, rc, e.GroupID)
	if err != nil {
		return nil, err
	}

	member, err := g.groups.IsMember(ctx, e.GroupID, user.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, auth.ErrUnauthorized
	}

	if err := g.events.Create(ctx, e); err != nil {
		return nil, err
	}

	// The creator attends their own event.
	if err := g.events.Invite(ctx, e.ID, user.ID); err != nil {
		return nil, err
	}
	if err := g.events.SetAttendeeStatus(ctx, e.ID, user.ID, org.AttendeeAccepted); err != nil {
		return nil, err
	}

	g.logger.Info("event created",
		"event_id", e.ID,
		"group_id", e.GroupID,
		"created_by", user.ID)
	return e, nil
}
