package auth

import (
	"context"
	"fmt"

	"github.com/rallypoint-io/rallypoint-core/internal/device"
)

// DeviceFinder looks up the device bound to a user under a client UUID.
// Implemented by the device repository.
type DeviceFinder interface {
	GetByUserAndUUID(ctx context.Context, userID, clientUUID string) (*device.Device, error)
}

// Verifier turns bearer tokens into identity resolvers. One Verifier is
// shared by the HTTP middleware, the WebSocket upgrade, and the MQTT
// ingest path, so every transport applies the same rules.
type Verifier struct {
	signer  *TokenSigner
	users   UserRepository
	devices DeviceFinder
}

// NewVerifier creates a Verifier.
func NewVerifier(signer *TokenSigner, users UserRepository, devices DeviceFinder) *Verifier {
	return &Verifier{signer: signer, users: users, devices: devices}
}

// ResolverFor returns a lazy resolver for one bearer token, suitable
// for attaching to a fresh RequestContext. Nothing is validated until
// the resolver runs.
func (v *Verifier) ResolverFor(token string) IdentityResolver {
	return func(ctx context.Context) (*User, *device.Device, error) {
		return v.Verify(ctx, token)
	}
}

// Verify validates a bearer token and returns the user and device it
// identifies.
//
// Beyond the signature, the token's embedded version must equal the
// account's current version. A bumped account version therefore kills
// every token issued before the bump, with no token denylist to
// maintain.
func (v *Verifier) Verify(ctx context.Context, token string) (*User, *device.Device, error) {
	claims, err := v.signer.Parse(token)
	if err != nil {
		return nil, nil, err
	}

	user, err := v.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if user.Version != claims.Version {
		return nil, nil, fmt.Errorf("%w: stale version", ErrTokenInvalid)
	}

	dev, err := v.devices.GetByUserAndUUID(ctx, user.ID, claims.DeviceUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	return user, dev, nil
}
