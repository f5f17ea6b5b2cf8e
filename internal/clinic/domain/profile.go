package domain

import (
	"time"

	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

// Profile is the application level record of a user. Role is fixed at
// creation; MustChangePassword is cleared only by a password change.
type Profile struct {
	ID                 string
	Role               role.Role
	FullName           string
	Email              string
	CPF                string
	Phone              string
	BirthDate          string // YYYY-MM-DD
	MustChangePassword bool
	TempPassword       string // only set for admin-created veterinarians
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ProfileUpdate carries the mutable profile fields. Nil fields are left
// untouched.
type ProfileUpdate struct {
	FullName           *string
	CPF                *string
	Phone              *string
	MustChangePassword *bool
	TempPassword       *string
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.FullName == nil && u.CPF == nil && u.Phone == nil &&
		u.MustChangePassword == nil && u.TempPassword == nil
}
