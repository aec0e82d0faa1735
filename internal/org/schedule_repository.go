package org

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScheduleRepository defines persistence for schedules and their time
// segments.
type ScheduleRepository interface {
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, id string) (*Schedule, error)
	ListByGroup(ctx context.Context, groupID string) ([]Schedule, error)
	AddSegment(ctx context.Context, seg *TimeSegment) error
	Segments(ctx context.Context, scheduleID string) ([]TimeSegment, error)
}

// SQLiteScheduleRepository implements ScheduleRepository using SQLite.
type SQLiteScheduleRepository struct {
	db *sql.DB
}

// NewScheduleRepository creates a new SQLite-backed schedule repository.
func NewScheduleRepository(db *sql.DB) *SQLiteScheduleRepository {
	return &SQLiteScheduleRepository{db: db}
}

// Create inserts a new schedule.
func (r *SQLiteScheduleRepository) Create(ctx context.Context, s *Schedule) error {
	if s.Name == "" || s.GroupID == "" {
		return fmt.Errorf("%w: name and group required", ErrInvalidInput)
	}
	if s.ID == "" {
		s.ID = "sch-" + uuid.NewString()[:8]
	}

	now := nowRFC3339()
	s.CreatedAt = parseStored(now)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO schedules (id, name, group_id, created_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.Name, s.GroupID, now,
	)
	if err != nil {
		return fmt.Errorf("creating schedule: %w", err)
	}
	return nil
}

// GetByID retrieves a schedule by ID.
func (r *SQLiteScheduleRepository) GetByID(ctx context.Context, id string) (*Schedule, error) {
	return scanSchedule(r.db.QueryRowContext(ctx,
		"SELECT id, name, group_id, created_at FROM schedules WHERE id = ?", id))
}

// ListByGroup returns the schedules attached to a group.
func (r *SQLiteScheduleRepository) ListByGroup(ctx context.Context, groupID string) ([]Schedule, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, group_id, created_at FROM schedules WHERE group_id = ? ORDER BY created_at ASC", groupID)
	if err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}
	defer rows.Close()

	schedules := []Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedules: %w", err)
	}

	return schedules, nil
}

// AddSegment appends a time segment to a schedule. The segment must
// have a valid status and a non-inverted time range.
func (r *SQLiteScheduleRepository) AddSegment(ctx context.Context, seg *TimeSegment) error {
	if seg.ScheduleID == "" {
		return fmt.Errorf("%w: schedule required", ErrInvalidInput)
	}
	switch seg.Status {
	case SegmentAvailable, SegmentUnavailable, SegmentStandby:
	default:
		return fmt.Errorf("%w: unknown segment status %q", ErrInvalidInput, seg.Status)
	}
	if !seg.EndsAt.After(seg.StartsAt) {
		return fmt.Errorf("%w: segment must end after it starts", ErrInvalidInput)
	}
	if seg.ID == "" {
		seg.ID = "seg-" + uuid.NewString()[:8]
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO time_segments (id, schedule_id, status, starts_at, ends_at)
		 VALUES (?, ?, ?, ?, ?)`,
		seg.ID, seg.ScheduleID, string(seg.Status),
		seg.StartsAt.UTC().Format(time.RFC3339), seg.EndsAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating time segment: %w", err)
	}
	return nil
}

// Segments returns a schedule's time segments in chronological order.
func (r *SQLiteScheduleRepository) Segments(ctx context.Context, scheduleID string) ([]TimeSegment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, schedule_id, status, starts_at, ends_at
		 FROM time_segments WHERE schedule_id = ? ORDER BY starts_at ASC`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("listing time segments: %w", err)
	}
	defer rows.Close()

	segments := []TimeSegment{}
	for rows.Next() {
		var seg TimeSegment
		var status, startsAt, endsAt string
		if err := rows.Scan(&seg.ID, &seg.ScheduleID, &status, &startsAt, &endsAt); err != nil {
			return nil, fmt.Errorf("scanning time segment: %w", err)
		}
		seg.Status = SegmentStatus(status)
		seg.StartsAt = parseStored(startsAt)
		seg.EndsAt = parseStored(endsAt)
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time segments: %w", err)
	}

	return segments, nil
}

func scanSchedule(s scanner) (*Schedule, error) {
	var sch Schedule
	var createdAt string

	err := s.Scan(&sch.ID, &sch.Name, &sch.GroupID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning schedule: %w", err)
	}

	sch.CreatedAt = parseStored(createdAt)
	return &sch, nil
}
