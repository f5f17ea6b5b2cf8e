package domain

import (
	"time"

	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

// TokenPair is what a successful credential exchange yields.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	UserID       string
	Role         role.Role
}

// RefreshToken is the stored form of an opaque refresh token.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string // FingerprintToken of the opaque value
	SessionID string // stable across rotations
	AMR       []string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// MFASession is a pending second factor challenge issued after a correct
// password for an MFA-enrolled user.
type MFASession struct {
	ID        string // fingerprint of the mfa_token handed to the client
	UserID    string
	SessionID string
	Attempts  int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// PasswordReset is a single-use recovery token.
type PasswordReset struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// MFAEnrollment is returned when TOTP enrolment starts.
type MFAEnrollment struct {
	Secret  string
	URL     string // otpauth:// URL for QR rendering
	Issuer  string
	Account string
}
