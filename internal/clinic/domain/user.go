package domain

import "time"

// User is an auth identity. Its ID is shared with the matching Profile.
type User struct {
	ID           string
	Email        string
	PasswordHash string     // argon2id PHC string
	MFAEnabled   *time.Time // set once TOTP enrolment is verified
	MFASecret    *string    // base32 TOTP secret
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasMFA reports whether sign-in requires a second factor.
func (u User) HasMFA() bool {
	return u.MFAEnabled != nil && u.MFASecret != nil && *u.MFASecret != ""
}

// SignUpMetadata is the profile data supplied together with a sign-up.
type SignUpMetadata struct {
	FullName  string
	CPF       string
	Phone     string
	BirthDate string
}

// BootstrapData describes the first administrator of an empty backend.
type BootstrapData struct {
	Email    string
	Password string
	FullName string
}
