package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Service implements device binding and location updates on top of the
// repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new device service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Bind returns the device registered for the user under the given
// client UUID, creating it if it does not exist yet. The operation is
// idempotent: binding the same (user, uuid) pair any number of times
// yields the same device row.
//
// Two concurrent binds for a new pair race on the insert; the loser
// hits the UNIQUE(user_id, uuid) constraint and re-fetches the winner's
// row, so both callers observe the same device.
func (s *Service) Bind(ctx context.Context, userID, clientUUID, name string) (*Device, error) {
	if userID == "" || clientUUID == "" {
		return nil, ErrInvalidInput
	}

	d, err := s.repo.GetByUserAndUUID(ctx, userID, clientUUID)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	d = &Device{UserID: userID, UUID: clientUUID, Name: name}
	if err := s.repo.Create(ctx, d); err != nil {
		if isUniqueViolation(err) {
			return s.repo.GetByUserAndUUID(ctx, userID, clientUUID)
		}
		return nil, err
	}

	s.logger.Info("device bound",
		slog.String("device_id", d.ID),
		slog.String("user_id", userID))

	return d, nil
}

// UpdateLocation records a new position for the device the request
// originated from. The device is resolved through the caller's
// identity, never from a client-supplied device ID.
func (s *Service) UpdateLocation(ctx context.Context, ident Identity, lat, lon float64) (*Device, error) {
	d, err := ident.Device(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLocation(ctx, d.ID, lat, lon); err != nil {
		return nil, fmt.Errorf("updating location for device %s: %w", d.ID, err)
	}

	d.Latitude = &lat
	d.Longitude = &lon

	return d, nil
}
