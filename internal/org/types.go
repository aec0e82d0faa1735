package org

import (
	"errors"
	"time"
)

// Sentinel errors for the coordination domain.
var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("org: not found")

	// ErrConflict is returned when a create collides with a unique
	// constraint, e.g. a duplicate organisation name.
	ErrConflict = errors.New("org: already exists")

	// ErrInvalidInput is returned when required fields are missing.
	ErrInvalidInput = errors.New("org: invalid input")
)

// Organisation is the top-level tenant. Every user, group, tag, and
// capability belongs to exactly one.
type Organisation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Group is a set of users inside an organisation who coordinate
// together. Schedules and events belong to groups.
type Group struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	OrganisationID string    `json:"organisation_id"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Schedule is a named availability plan attached to a group, made up of
// time segments.
type Schedule struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GroupID   string    `json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SegmentStatus classifies a time segment.
type SegmentStatus string

// Time segment statuses.
const (
	SegmentAvailable   SegmentStatus = "available"
	SegmentUnavailable SegmentStatus = "unavailable"
	SegmentStandby     SegmentStatus = "standby"
)

// TimeSegment is one contiguous span within a schedule.
type TimeSegment struct {
	ID         string        `json:"id"`
	ScheduleID string        `json:"schedule_id"`
	Status     SegmentStatus `json:"status"`
	StartsAt   time.Time     `json:"starts_at"`
	EndsAt     time.Time     `json:"ends_at"`
}

// Event is a group activity with a time range and an attendee list.
type Event struct {
	ID        string     `json:"id"`
	GroupID   string     `json:"group_id"`
	Name      string     `json:"name"`
	Details   string     `json:"details,omitempty"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// AttendeeStatus tracks a user's response to an event.
type AttendeeStatus string

// Attendee statuses.
const (
	AttendeeInvited  AttendeeStatus = "invited"
	AttendeeAccepted AttendeeStatus = "accepted"
	AttendeeDeclined AttendeeStatus = "declined"
)

// Attendee is a user's participation record on an event.
type Attendee struct {
	EventID   string         `json:"event_id"`
	UserID    string         `json:"user_id"`
	Status    AttendeeStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// Tag is an organisation-scoped label attachable to users and groups.
type Tag struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	OrganisationID string `json:"organisation_id"`
}

// Capability is an organisation-scoped permission marker. A user's
// effective capabilities are those granted directly plus those granted
// to any group the user is a member of.
type Capability struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	OrganisationID string `json:"organisation_id"`
}
