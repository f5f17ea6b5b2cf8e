package service

import "github.com/aussiebroadwan/billybuddy/pkg/role"

// Actor is the authenticated caller a row policy is evaluated for.
type Actor struct {
	UserID string
	Role   role.Role
}

func (a Actor) IsAdmin() bool     { return a.Role == role.Admin }
func (a Actor) IsVet() bool       { return a.Role == role.Veterinarian }
func (a Actor) IsTutor() bool     { return a.Role == role.Tutor }
func (a Actor) Is(id string) bool { return a.UserID != "" && a.UserID == id }
