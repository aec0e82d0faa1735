package api

import (
	"net/http"
)

// handleMe returns the calling user's account.
//
// GET /me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.graph.Me(r.Context(), requestCtx(r.Context()))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleMyDevice returns the device the request originated from.
//
// GET /me/device
func (s *Server) handleMyDevice(w http.ResponseWriter, r *http.Request) {
	dev, err := s.graph.MyDevice(r.Context(), requestCtx(r.Context()))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// handleMyDevices returns every device bound to the calling account.
//
// GET /me/devices
func (s *Server) handleMyDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.graph.MyDevices(r.Context(), requestCtx(r.Context()))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleMyGroups returns the groups the caller is a member of.
//
// GET /me/groups
func (s *Server) handleMyGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.graph.MyGroups(r.Context(), requestCtx(r.Context()))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups, "count": len(groups)})
}

// handleMyEvents returns events the caller is invited to or attending.
//
// GET /me/events
func (s *Server) handleMyEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.graph.MyEvents(r.Context(), requestCtx(r.Context()))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

// handleMySchedules returns schedules owned by the caller.
//
// GET /me/schedules
func (s *Server) handleMySchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.graph.MySchedules(r.Context(), requestCtx(r.Context()))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedules": schedules, "count": len(schedules)})
}

// handleMyTags returns tags attached to the calling user.
//
// GET /me/tags
func (s *Server) handleMyTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.graph.MyTags(r.Context(), requestCtx(r.Context()))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags, "count": len(tags)})
}

// handleMyCapabilities returns the caller's effective capability set:
// direct grants unioned with grants to any of the caller's groups.
//
// GET /me/capabilities
func (s *Server) handleMyCapabilities(w http.ResponseWriter, r *http.Request) {
	caps, err := s.graph.MyCapabilities(r.Context(), requestCtx(r.Context()))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"capabilities": caps, "count": len(caps)})
}

// handleMyOrganisation returns the caller's organisation.
//
// GET /me/organisation
func (s *Server) handleMyOrganisation(w http.ResponseWriter, r *http.Request) {
	o, err := s.graph.MyOrganisation(r.Context(), requestCtx(r.Context()))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
