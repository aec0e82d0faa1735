package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a session token. The layout is fixed: every
// token carries exactly the four fields below, so clients and other
// services can rely on a stable shape.
//
// Version snapshots the account version at issue time. A token is only
// as fresh as its version; once the account version moves past it, the
// token is dead regardless of any expiry.
type Claims struct {
	jwt.RegisteredClaims

	UserID     string `json:"id"`
	DeviceUUID string `json:"device"`
	Email      string `json:"email"`
	Version    int64  `json:"version"`
}

// TokenSigner issues and validates session tokens with a shared HMAC
// secret.
type TokenSigner struct {
	secret []byte
}

// NewTokenSigner creates a signer from the configured secret.
func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret)}
}

// Sign issues a session token for a user on a device. The embedded
// registered claims are left zero so the serialized payload contains
// only the four session fields.
func (s *TokenSigner) Sign(user *User, deviceUUID string) (string, error) {
	claims := Claims{
		UserID:     user.ID,
		DeviceUUID: deviceUUID,
		Email:      user.Email,
		Version:    user.Version,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Parse validates a session token's signature and structure and returns
// its claims. Version freshness is checked separately against the
// account, not here.
func (s *TokenSigner) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrTokenInvalid)
	}
	if claims.DeviceUUID == "" {
		return nil, fmt.Errorf("%w: missing device", ErrTokenInvalid)
	}

	return claims, nil
}
