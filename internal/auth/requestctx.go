package auth

import (
	"context"
	"sync"

	"github.com/rallypoint-io/rallypoint-core/internal/device"
)

// IdentityResolver produces the user and device behind a request,
// typically by validating the bearer token it carried. It is invoked at
// most once per request, the first time identity is needed.
type IdentityResolver func(ctx context.Context) (*User, *device.Device, error)

// RequestContext carries the identity of a single request. A fresh one
// is created per request; resolution is lazy, so requests that never
// touch identity never pay for token validation or the user lookup.
//
// Resolution fails closed: if no resolver is attached, or the resolver
// cannot produce a valid identity, User and Device return
// ErrUnauthorized. There is no fallback identity of any kind.
//
// Safe for concurrent use. Handlers that fan out can share one
// RequestContext across goroutines; the resolver still runs once.
type RequestContext struct {
	mu       sync.Mutex
	resolver IdentityResolver
	resolved bool
	user     *User
	device   *device.Device
	err      error
}

// NewRequestContext creates an empty context with no identity and no
// resolver. Identity lookups on it fail with ErrUnauthorized until
// WithResolver, SetUser, or SetDevice is called.
func NewRequestContext() *RequestContext {
	return &RequestContext{}
}

// WithResolver attaches the lazy identity resolver. It returns the
// receiver for chaining during request setup.
func (rc *RequestContext) WithResolver(resolver IdentityResolver) *RequestContext {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.resolver = resolver
	return rc
}

// User returns the authenticated user for this request, resolving it on
// first use. Returns ErrUnauthorized when the request carries no valid
// identity.
func (rc *RequestContext) User(ctx context.Context) (*User, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if err := rc.resolveLocked(ctx); err != nil {
		return nil, err
	}
	if rc.user == nil {
		return nil, ErrUnauthorized
	}
	return rc.user, nil
}

// Device returns the device the request originated from, resolving it
// on first use. Returns ErrUnauthorized when the request carries no
// valid identity.
func (rc *RequestContext) Device(ctx context.Context) (*device.Device, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if err := rc.resolveLocked(ctx); err != nil {
		return nil, err
	}
	if rc.device == nil {
		return nil, ErrUnauthorized
	}
	return rc.device, nil
}

// SetUser overwrites the memoized user. Signup and login use it to
// establish identity for the remainder of the request without a token
// round-trip.
func (rc *RequestContext) SetUser(u *User) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.resolved = true
	rc.err = nil
	rc.user = u
}

// SetDevice overwrites the memoized device.
func (rc *RequestContext) SetDevice(d *device.Device) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.resolved = true
	rc.err = nil
	rc.device = d
}

// resolveLocked runs the resolver once and memoizes the outcome,
// success or failure. Callers must hold rc.mu.
func (rc *RequestContext) resolveLocked(ctx context.Context) error {
	if rc.resolved {
		return rc.err
	}
	rc.resolved = true

	if rc.resolver == nil {
		rc.err = ErrUnauthorized
		return rc.err
	}

	user, dev, err := rc.resolver(ctx)
	if err != nil {
		// Whatever went wrong upstream, the request is simply
		// unauthenticated from the handler's point of view.
		rc.err = ErrUnauthorized
		return rc.err
	}

	rc.user = user
	rc.device = dev
	return nil
}
