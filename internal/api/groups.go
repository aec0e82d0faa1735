package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rallypoint-io/rallypoint-core/internal/org"
)

// createGroupRequest is the request body for POST /groups.
type createGroupRequest struct {
	Name string `json:"name"`
}

// handleCreateGroup creates a group in the caller's organisation with
// the caller as its first member.
//
// POST /groups
// Body: {"name": "Night shift"}
// Response: 201 Created with the group
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	group, err := s.graph.CreateGroup(r.Context(), requestCtx(r.Context()), req.Name)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

// handleAddGroupMember adds a user from the same organisation to a
// group. Users outside the caller's organisation are reported as not
// found, never as forbidden, so group membership cannot be used to
// probe other tenants.
//
// POST /groups/{id}/members
// Body: {"user_id": "usr-..."}
// Response: the group
func (s *Server) handleAddGroupMember(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if body.UserID == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	group, err := s.graph.AddUserToGroup(r.Context(), requestCtx(r.Context()), groupID, body.UserID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}

// handleGroupUsers returns the members of a group.
//
// GET /groups/{id}/users
func (s *Server) handleGroupUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.graph.GroupUsers(r.Context(), requestCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

// handleGroupSchedules returns the schedules attached to a group.
//
// GET /groups/{id}/schedules
func (s *Server) handleGroupSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.graph.GroupSchedules(r.Context(), requestCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedules": schedules, "count": len(schedules)})
}

// handleGroupEvents returns the events attached to a group.
//
// GET /groups/{id}/events
func (s *Server) handleGroupEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.graph.GroupEvents(r.Context(), requestCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

// handleGroupTags returns the tags attached to a group.
//
// GET /groups/{id}/tags
func (s *Server) handleGroupTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.graph.GroupTags(r.Context(), requestCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags, "count": len(tags)})
}

// createEventRequest is the request body for POST /groups/{id}/events.
type createEventRequest struct {
	Name     string     `json:"name"`
	Details  string     `json:"details"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

// handleCreateEvent creates an event on a group. The caller must be a
// member and is recorded as an accepted attendee.
//
// POST /groups/{id}/events
// Response: 201 Created with the event
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	event := &org.Event{
		GroupID:  chi.URLParam(r, "id"),
		Name:     req.Name,
		Details:  req.Details,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}

	created, err := s.graph.CreateEvent(r.Context(), requestCtx(r.Context()), event)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
