package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rallypoint-io/rallypoint-core/internal/org"
)

// createScheduleRequest is the request body for POST /schedules.
type createScheduleRequest struct {
	Name    string `json:"name"`
	GroupID string `json:"group_id"`
}

// handleCreateSchedule creates a schedule on a group the caller is a
// member of.
//
// POST /schedules
// Body: {"name": "On call", "group_id": "grp-..."}
// Response: 201 Created with the schedule
func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	schedule, err := s.graph.CreateSchedule(r.Context(), requestCtx(r.Context()), req.Name, req.GroupID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, schedule)
}

// handleScheduleSegments returns a schedule's time segments in
// chronological order.
//
// GET /schedules/{id}/segments
func (s *Server) handleScheduleSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := s.graph.ScheduleSegments(r.Context(), requestCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"segments": segments, "count": len(segments)})
}

// addSegmentRequest is the request body for POST /schedules/{id}/segments.
type addSegmentRequest struct {
	Status   string    `json:"status"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// handleAddTimeSegment appends a time segment to a schedule owned by a
// group the caller is a member of.
//
// POST /schedules/{id}/segments
// Body: {"status": "available", "starts_at": ..., "ends_at": ...}
// Response: 201 Created with the segment
func (s *Server) handleAddTimeSegment(w http.ResponseWriter, r *http.Request) {
	var req addSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	segment := &org.TimeSegment{
		ScheduleID: chi.URLParam(r, "id"),
		Status:     org.SegmentStatus(req.Status),
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
	}

	created, err := s.graph.AddTimeSegment(r.Context(), requestCtx(r.Context()), segment)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
