package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rallypoint-io/rallypoint-core/internal/telemetry"
)

// locationRequest is the request body for PUT /devices/location.
type locationRequest struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// handleUpdateLocation records a position for the calling device.
//
// The device is always resolved from the caller's token; there is no
// way to move another device over this endpoint.
//
// PUT /devices/location
// Body: {"lat": 51.5, "lon": -0.12}
// Response: updated device JSON
func (s *Server) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Latitude < -90 || req.Latitude > 90 {
		writeBadRequest(w, "lat must be between -90 and 90")
		return
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		writeBadRequest(w, "lon must be between -180 and 180")
		return
	}

	rc := requestCtx(r.Context())
	dev, err := s.devices.UpdateLocation(r.Context(), rc, req.Latitude, req.Longitude)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// Same side effects as the MQTT ingest path: history point and
	// WebSocket fan-out, both best-effort.
	if s.trail != nil {
		s.trail.WriteLocationPoint(dev.ID, dev.UserID, req.Latitude, req.Longitude)
	}
	if s.hub != nil {
		event := telemetry.LocationEvent{
			Type:      "device_location",
			DeviceID:  dev.ID,
			UserID:    dev.UserID,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if payload, err := json.Marshal(event); err == nil {
			s.hub.Broadcast(payload)
		}
	}

	writeJSON(w, http.StatusOK, dev)
}
