package auth

import (
	"errors"
	"regexp"
	"time"

	"github.com/rallypoint-io/rallypoint-core/internal/device"
)

// Sentinel errors for account and session operations.
var (
	// ErrUnauthorized is returned when a request carries no valid
	// identity. Handlers translate it to a 401 without detail.
	ErrUnauthorized = errors.New("auth: unauthorized")

	// ErrInvalidCredentials is returned when a login password does not
	// match the account's hash.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrAccountExists is returned when a signup collides with an
	// existing username or email.
	ErrAccountExists = errors.New("auth: account already exists")

	// ErrUserNotFound is returned when a user lookup matches no row.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrTokenInvalid is returned when a session token fails signature,
	// structure, or version validation.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrInvalidInput is returned when required fields are missing or
	// malformed.
	ErrInvalidInput = errors.New("auth: invalid input")

	// ErrPasswordTooShort is returned when a signup password does not
	// meet the minimum length.
	ErrPasswordTooShort = errors.New("auth: password must be at least 8 characters")
)

// MinPasswordLength is the minimum accepted password length on signup.
const MinPasswordLength = 8

// usernamePattern restricts usernames to a safe, URL-friendly charset.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,64}$`)

// emailPattern is a light syntactic check, not full RFC 5322.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User is an account in the system. Every user belongs to exactly one
// organisation.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // never serialised
	Version        int64     `json:"-"` // revocation counter, token-internal
	OrganisationID string    `json:"organisation_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ValidUsername reports whether s is an acceptable username.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Session is the result of a successful signup or login: the account,
// the device it was established from, and a signed bearer token scoped
// to that device.
type Session struct {
	User   *User          `json:"user"`
	Device *device.Device `json:"device"`
	Token  string         `json:"token"`
}
