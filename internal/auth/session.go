package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rallypoint-io/rallypoint-core/internal/device"
)

// DeviceBinder binds a client device UUID to an account, creating the
// device on first sight. Implemented by the device service.
type DeviceBinder interface {
	Bind(ctx context.Context, userID, clientUUID, name string) (*device.Device, error)
}

// SessionConfig carries the tunables for the session service.
type SessionConfig struct {
	// OperationTimeout bounds each signup or login end to end.
	OperationTimeout time.Duration

	// AllowPasswordless permits logging in with an empty password.
	// Test fixtures only; config validation refuses to enable it
	// outside a fixture environment.
	AllowPasswordless bool

	// DefaultOrganisationID is the organisation new accounts join.
	DefaultOrganisationID string
}

// SessionService implements account signup and login. Both operations
// end with a bound device and a signed session token; there is no
// authenticated state without a device.
type SessionService struct {
	users   UserRepository
	devices DeviceBinder
	signer  *TokenSigner
	cfg     SessionConfig
	logger  *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(users UserRepository, devices DeviceBinder, signer *TokenSigner, cfg SessionConfig, logger *slog.Logger) *SessionService {
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Second //nolint:mnd // default operation bound
	}
	return &SessionService{users: users, devices: devices, signer: signer, cfg: cfg, logger: logger}
}

// SignupInput is the payload for Signup.
type SignupInput struct {
	Username   string
	Email      string
	Password   string
	DeviceUUID string
}

// Signup registers a new account, binds the signing-up device, and
// issues a session token.
//
// The username/email pre-check and the insert are not atomic; a
// concurrent signup for the same identifiers can slip between them. The
// unique constraints on the users table backstop that race, and the
// resulting constraint violation surfaces as the same ErrAccountExists
// the pre-check would have produced.
func (s *SessionService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	if err := validateSignup(in); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByUsernameOrEmail(ctx, in.Username)
	if err == nil && existing != nil {
		return nil, ErrAccountExists
	}
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("checking for existing account: %w", err)
	}
	if in.Email != in.Username {
		existing, err = s.users.GetByUsernameOrEmail(ctx, in.Email)
		if err == nil && existing != nil {
			return nil, ErrAccountExists
		}
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("checking for existing account: %w", err)
		}
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Username:       in.Username,
		Email:          in.Email,
		PasswordHash:   hash,
		Version:        1,
		OrganisationID: s.cfg.DefaultOrganisationID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.establishSession(ctx, user, in.DeviceUUID, "signup")
}

// LoginInput is the payload for Login.
type LoginInput struct {
	Username   string
	Password   string
	DeviceUUID string
}

// Login verifies credentials and issues a session token bound to the
// logging-in device. An unknown username fails with ErrUserNotFound
// whatever the password; a known account with a wrong password fails
// with ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	if in.Username == "" || in.DeviceUUID == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if in.Password == "" {
		if !s.cfg.AllowPasswordless {
			return nil, ErrInvalidCredentials
		}
		s.logger.Warn("passwordless login used", slog.String("user_id", user.ID))
		return s.establishSession(ctx, user, in.DeviceUUID, "login")
	}

	ok, err := VerifyPassword(in.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.establishSession(ctx, user, in.DeviceUUID, "login")
}

// establishSession binds the device and signs a token for it. Shared
// tail of signup and login.
func (s *SessionService) establishSession(ctx context.Context, user *User, deviceUUID, op string) (*Session, error) {
	dev, err := s.devices.Bind(ctx, user.ID, deviceUUID, "")
	if err != nil {
		return nil, fmt.Errorf("binding device: %w", err)
	}

	token, err := s.signer.Sign(user, deviceUUID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session established",
		slog.String("op", op),
		slog.String("user_id", user.ID),
		slog.String("device_uuid", deviceUUID))

	return &Session{User: user, Device: dev, Token: token}, nil
}

// Revoke invalidates every outstanding session for an account by
// bumping its version. Tokens issued afterwards embed the new version.
func (s *SessionService) Revoke(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	version, err := s.users.BumpVersion(ctx, userID)
	if err != nil {
		return err
	}

	s.logger.Info("sessions revoked",
		slog.String("user_id", userID),
		slog.Int64("new_version", version))
	return nil
}

func validateSignup(in SignupInput) error {
	if in.DeviceUUID == "" {
		return ErrInvalidInput
	}
	if !ValidUsername(in.Username) {
		return fmt.Errorf("%w: username", ErrInvalidInput)
	}
	if !ValidEmail(in.Email) {
		return fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if len(in.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
