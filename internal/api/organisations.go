package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// createOrganisationRequest is the request body for POST /organisations.
type createOrganisationRequest struct {
	Name string `json:"name"`
}

// handleCreateOrganisation creates a new organisation. Any
// authenticated user may create one; the caller is recorded as its
// creator but stays in their current organisation.
//
// POST /organisations
// Body: {"name": "Acme Search and Rescue"}
// Response: 201 Created with the organisation
func (s *Server) handleCreateOrganisation(w http.ResponseWriter, r *http.Request) {
	var req createOrganisationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	o, err := s.graph.CreateOrganisation(r.Context(), requestCtx(r.Context()), req.Name)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, o)
}

// handleOrganisationGroups returns an organisation's groups. Only
// members of the organisation may list them.
//
// GET /organisations/{id}/groups
func (s *Server) handleOrganisationGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.graph.OrganisationGroups(r.Context(), requestCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups, "count": len(groups)})
}

// handleOrganisationUsers returns an organisation's user roster,
// member-only.
//
// GET /organisations/{id}/users
func (s *Server) handleOrganisationUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.graph.OrganisationUsers(r.Context(), requestCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

// handleOrganisationTags returns an organisation's tag catalogue,
// member-only.
//
// GET /organisations/{id}/tags
func (s *Server) handleOrganisationTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.graph.OrganisationTags(r.Context(), requestCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags, "count": len(tags)})
}

// handleOrganisationCapabilities returns an organisation's capability
// catalogue, member-only. Listing here is not a grant; effective
// capabilities come from /me/capabilities.
//
// GET /organisations/{id}/capabilities
func (s *Server) handleOrganisationCapabilities(w http.ResponseWriter, r *http.Request) {
	caps, err := s.graph.OrganisationCapabilities(r.Context(), requestCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"capabilities": caps, "count": len(caps)})
}
