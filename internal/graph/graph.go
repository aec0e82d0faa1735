package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rallypoint-io/rallypoint-core/internal/auth"
	"github.com/rallypoint-io/rallypoint-core/internal/device"
	"github.com/rallypoint-io/rallypoint-core/internal/org"
)

// defaultOperationTimeout bounds a single traversal or mutation.
const defaultOperationTimeout = 5 * time.Second

// Graph exposes the traversals and mutations reachable from an
// authenticated identity.
type Graph struct {
	users        auth.UserRepository
	devices      device.Repository
	orgs         org.OrganisationRepository
	groups       org.GroupRepository
	schedules    org.ScheduleRepository
	events       org.EventRepository
	tags         org.TagRepository
	capabilities org.CapabilityRepository
	timeout      time.Duration
	logger       *slog.Logger
}

// Repositories bundles the stores the graph traverses.
type Repositories struct {
	Users         auth.UserRepository
	Devices       device.Repository
	Organisations org.OrganisationRepository
	Groups        org.GroupRepository
	Schedules     org.ScheduleRepository
	Events        org.EventRepository
	Tags          org.TagRepository
	Capabilities  org.CapabilityRepository
}

// New creates a Graph over the given repositories. A non-positive
// timeout falls back to the default operation bound.
func New(repos Repositories, timeout time.Duration, logger *slog.Logger) *Graph {
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return &Graph{
		users:        repos.Users,
		devices:      repos.Devices,
		orgs:         repos.Organisations,
		groups:       repos.Groups,
		schedules:    repos.Schedules,
		events:       repos.Events,
		tags:         repos.Tags,
		capabilities: repos.Capabilities,
		timeout:      timeout,
		logger:       logger,
	}
}

// bound applies the operation timeout.
func (g *Graph) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.timeout)
}

// requireUser resolves the caller or fails closed.
func (g *Graph) requireUser(ctx context.Context, rc *auth.RequestContext) (*auth.User, error) {
	user, err := rc.User(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// requireOrgMember resolves the caller and checks they belong to the
// organisation. Broad tenant listings are member-only.
func (g *Graph) requireOrgMember(ctx context.Context, rc *auth.RequestContext, orgID string) (*auth.User, error) {
	user, err := g.requireUser(ctx, rc)
	if err != nil {
		return nil, err
	}
	if user.OrganisationID != orgID {
		return nil, auth.ErrUnauthorized
	}
	return user, nil
}

// requireGroupInCallerOrg resolves the caller, loads the group, and
// checks both live in the same organisation.
func (g *Graph) requireGroupInCallerOrg(ctx context.Context, rc *auth.RequestContext, groupID string) (*auth.User, *org.Group, error) {
	user, err := g.requireUser(ctx, rc)
	if err != nil {
		return nil, nil, err
	}
	grp, err := g.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, org.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: group", org.ErrNotFound)
		}
		return nil, nil, err
	}
	if grp.OrganisationID != user.OrganisationID {
		return nil, nil, auth.ErrUnauthorized
	}
	return user, grp, nil
}
