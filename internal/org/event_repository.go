package org

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventRepository defines persistence for events and attendance.
type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByGroup(ctx context.Context, groupID string) ([]Event, error)
	ListByUser(ctx context.Context, userID string) ([]Event, error)
	Invite(ctx context.Context, eventID, userID string) error
	SetAttendeeStatus(ctx context.Context, eventID, userID string, status AttendeeStatus) error
	Attendees(ctx context.Context, eventID string) ([]Attendee, error)
}

// SQLiteEventRepository implements EventRepository using SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new SQLite-backed event repository.
func NewEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

const eventColumns = "id, group_id, name, COALESCE(details, ''), starts_at, ends_at, created_at"

// Create inserts a new event.
func (r *SQLiteEventRepository) Create(ctx context.Context, e *Event) error {
	if e.Name == "" || e.GroupID == "" {
		return fmt.Errorf("%w: name and group required", ErrInvalidInput)
	}
	if e.StartsAt.IsZero() {
		return fmt.Errorf("%w: start time required", ErrInvalidInput)
	}
	if e.EndsAt != nil && !e.EndsAt.After(e.StartsAt) {
		return fmt.Errorf("%w: event must end after it starts", ErrInvalidInput)
	}
	if e.ID == "" {
		e.ID = "evt-" + uuid.NewString()[:8]
	}

	now := nowRFC3339()
	e.CreatedAt = parseStored(now)

	var endsAt any
	if e.EndsAt != nil {
		endsAt = e.EndsAt.UTC().Format(time.RFC3339)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, group_id, name, details, starts_at, ends_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.GroupID, e.Name, e.Details,
		e.StartsAt.UTC().Format(time.RFC3339), endsAt, now,
	)
	if err != nil {
		return fmt.Errorf("creating event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID.
func (r *SQLiteEventRepository) GetByID(ctx context.Context, id string) (*Event, error) {
	return scanEvent(r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?", id))
}

// ListByGroup returns a group's events in start order.
func (r *SQLiteEventRepository) ListByGroup(ctx context.Context, groupID string) ([]Event, error) {
	return r.listEvents(ctx,
		"SELECT "+eventColumns+" FROM events WHERE group_id = ? ORDER BY starts_at ASC", groupID)
}

// ListByUser returns the events a user is invited to or attending.
func (r *SQLiteEventRepository) ListByUser(ctx context.Context, userID string) ([]Event, error) {
	return r.listEvents(ctx,
		`SELECT e.id, e.group_id, e.name, COALESCE(e.details, ''), e.starts_at, e.ends_at, e.created_at
		 FROM events e
		 JOIN event_attendees ea ON ea.event_id = e.id
		 WHERE ea.user_id = ? AND ea.status != ?
		 ORDER BY e.starts_at ASC`, userID, string(AttendeeDeclined))
}

// Invite adds a user to an event's attendee list in the invited state.
// Re-inviting an existing attendee is a no-op and preserves their
// current status.
func (r *SQLiteEventRepository) Invite(ctx context.Context, eventID, userID string) error {
	if eventID == "" || userID == "" {
		return ErrInvalidInput
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_attendees (event_id, user_id, status, created_at) VALUES (?, ?, ?, ?)`,
		eventID, userID, string(AttendeeInvited), nowRFC3339(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("inviting attendee: %w", err)
	}
	return nil
}

// SetAttendeeStatus records a user's response to an event.
func (r *SQLiteEventRepository) SetAttendeeStatus(ctx context.Context, eventID, userID string, status AttendeeStatus) error {
	switch status {
	case AttendeeInvited, AttendeeAccepted, AttendeeDeclined:
	default:
		return fmt.Errorf("%w: unknown attendee status %q", ErrInvalidInput, status)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE event_attendees SET status = ? WHERE event_id = ? AND user_id = ?`,
		string(status), eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("updating attendee status: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Attendees returns an event's attendee records.
func (r *SQLiteEventRepository) Attendees(ctx context.Context, eventID string) ([]Attendee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT event_id, user_id, status, created_at
		 FROM event_attendees WHERE event_id = ? ORDER BY created_at ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing attendees: %w", err)
	}
	defer rows.Close()

	attendees := []Attendee{}
	for rows.Next() {
		var a Attendee
		var status, createdAt string
		if err := rows.Scan(&a.EventID, &a.UserID, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning attendee: %w", err)
		}
		a.Status = AttendeeStatus(status)
		a.CreatedAt = parseStored(createdAt)
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attendees: %w", err)
	}

	return attendees, nil
}

func (r *SQLiteEventRepository) listEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return events, nil
}

func scanEvent(s scanner) (*Event, error) {
	var e Event
	var startsAt, createdAt string
	var endsAt sql.NullString

	err := s.Scan(&e.ID, &e.GroupID, &e.Name, &e.Details, &startsAt, &endsAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning event: %w", err)
	}

	e.StartsAt = parseStored(startsAt)
	if endsAt.Valid {
		t := parseStored(endsAt.String)
		e.EndsAt = &t
	}
	e.CreatedAt = parseStored(createdAt)
	return &e, nil
}
