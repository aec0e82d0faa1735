package api

import (
	"encoding/json"
	"net/http"

	"github.com/rallypoint-io/rallypoint-core/internal/auth"
)

// signupRequest is the request body for POST /auth/signup.
type signupRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceUUID string `json:"device_uuid"`
}

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	DeviceUUID string `json:"device_uuid"`
}

// handleSignup registers a new account bound to the signing-up device.
//
// POST /auth/signup
// Body: {"username", "email", "password", "device_uuid"}
// Response: 201 Created with {"user": ..., "token": "..."}
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	session, err := s.sessions.Signup(r.Context(), auth.SignupInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		DeviceUUID: req.DeviceUUID,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	establishIdentity(r, session)
	writeJSON(w, http.StatusCreated, session)
}

// handleLogin verifies credentials and issues a session token bound to
// the logging-in device.
//
// POST /auth/login
// Body: {"username", "password", "device_uuid"}
// Response: {"user": ..., "token": "..."}
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	session, err := s.sessions.Login(r.Context(), auth.LoginInput{
		Username:   req.Username,
		Password:   req.Password,
		DeviceUUID: req.DeviceUUID,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	establishIdentity(r, session)
	writeJSON(w, http.StatusOK, session)
}

// establishIdentity overwrites the request's pending identity with the
// freshly established session, so anything later in the same request
// observes the new user and device without a token round-trip.
func establishIdentity(r *http.Request, session *auth.Session) {
	rc := requestCtx(r.Context())
	rc.SetUser(session.User)
	rc.SetDevice(session.Device)
}

// handleRevoke invalidates every session token ever issued for the
// calling account by bumping its version counter.
//
// POST /auth/revoke
// Response: 204 No Content
func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	user, err := requestCtx(r.Context()).User(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if err := s.sessions.Revoke(r.Context(), user.ID); err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
