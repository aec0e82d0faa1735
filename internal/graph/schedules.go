package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/rallypoint-io/rallypoint-core/internal/auth"
	"github.com/rallypoint-io/rallypoint-core/internal/org"
)

// CreateSchedule creates a schedule on a group. Only members of the
// group may attach schedules to it.
func (g *Graph) CreateSchedule(ctx context.Context, rc *auth.RequestContext, name, groupID string) (*org.Schedule, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	user, _, err := g.requireGroupInCallerOrg(ctx, rc, groupID)
	if err != nil {
		return nil, err
	}

	member, err := g.groups.IsMember(ctx, groupID, user.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, auth.ErrUnauthorized
	}

	s := &org.Schedule{Name: name, GroupID: groupID}
	if err := g.schedules.Create(ctx, s); err != nil {
		return nil, err
	}

	g.logger.Info("schedule created",
		"schedule_id", s.ID,
		"group_id", groupID,
		"created_by", user.ID)
	return s, nil
}

// ScheduleSegments returns a schedule's time segments. Open to anyone
// in the owning group's organisation.
func (g *Graph) ScheduleSegments(ctx context.Context, rc *auth.RequestContext, scheduleID string) ([]org.TimeSegment, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	s, err := g.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, org.ErrNotFound) {
			return nil, fmt.Errorf("%w: schedule", org.ErrNotFound)
		}
		return nil, err
	}
	if _, _, err := g.requireGroupInCallerOrg(ctx, rc, s.GroupID); err != nil {
		return nil, err
	}
	return g.schedules.Segments(ctx, scheduleID)
}

// AddTimeSegment appends a segment to a schedule. Group members only.
func (g *Graph) AddTimeSegment(ctx context.Context, rc *auth.RequestContext, seg *org.TimeSegment) (*org.TimeSegment, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	s, err := g.schedules.GetByID(ctx, seg.ScheduleID)
	if err != nil {
		if errors.Is(err, org.ErrNotFound) {
			return nil, fmt.Errorf("%w: schedule", org.ErrNotFound)
		}
		return nil, err
	}

	user, _, err := g.requireGroupInCallerOrg(ctx, rc, s.GroupID)
	if err != nil {
		return nil, err
	}
	member, err := g.groups.IsMember(ctx, s.GroupID, user.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, auth.ErrUnauthorized
	}

	if err := g.schedules.AddSegment(ctx, seg); err != nil {
		return nil, err
	}
	return seg, nil
}
