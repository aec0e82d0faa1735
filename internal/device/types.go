package device

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by device operations.
var (
	// ErrNotFound is returned when a device lookup matches no row.
	ErrNotFound = errors.New("device: not found")

	// ErrInvalidInput is returned when required fields are missing or
	// malformed.
	ErrInvalidInput = errors.New("device: invalid input")
)

// Device is a physical or virtual endpoint bound to a user account.
// The UUID is chosen by the client (typically a stable hardware or
// install identifier) and is unique per user, not globally.
type Device struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UUID      string    `json:"uuid"`
	Name      string    `json:"name,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLocation reports whether the device has reported a position.
func (d *Device) HasLocation() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// Identity resolves the device a request originated from. It is
// implemented by the per-request authorization context; operations that
// must act on "the calling device" accept it instead of a device ID so
// the caller cannot substitute an arbitrary device.
type Identity interface {
	Device(ctx context.Context) (*Device, error)
}

// Repository defines persistence operations for devices.
type Repository interface {
	// Create inserts a new device row. It returns ErrConflict-like
	// unique violations from the driver unwrapped; callers that need
	// find-or-create semantics should use FindOrCreate.
	Create(ctx context.Context, d *Device) error

	// GetByID retrieves a device by its internal ID.
	GetByID(ctx context.Context, id string) (*Device, error)

	// GetByUserAndUUID retrieves the device bound to a user under the
	// given client UUID.
	GetByUserAndUUID(ctx context.Context, userID, uuid string) (*Device, error)

	// ListByUser returns all devices bound to a user, oldest first.
	ListByUser(ctx context.Context, userID string) ([]*Device, error)

	// UpdateLocation records the most recent reported position.
	UpdateLocation(ctx context.Context, id string, lat, lon float64) error
}
