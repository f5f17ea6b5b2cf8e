// Package session owns the portal's authentication state: the current
// session, the profile resolved for it, and where the session is persisted
// between reloads.
package session

import (
	"time"

	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

// Session is the authenticated state returned by the clinic backend.
type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// FromToken builds a Session from a token response.
func FromToken(email string, tok clinicsdk.TokenResponse) *Session {
	return &Session{
		UserID:       tok.UserID,
		Email:        email,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}
}

// FromSDK snapshots the tokens held by an SDK session.
func FromSDK(email string, s *clinicsdk.Session) *Session {
	return &Session{
		UserID:       s.UserID(),
		Email:        email,
		AccessToken:  s.AccessToken(),
		RefreshToken: s.RefreshToken(),
		ExpiresAt:    s.ExpiresAt(),
	}
}

// Profile is the user's profile row. Provisional profiles stand in while the
// real one could not be fetched.
type Profile struct {
	ID                 string    `json:"id"`
	Role               role.Role `json:"role"`
	FullName           string    `json:"full_name"`
	Email              string    `json:"email"`
	CPF                string    `json:"cpf"`
	Phone              string    `json:"phone"`
	MustChangePassword bool      `json:"must_change_password"`
	Provisional        bool      `json:"provisional,omitempty"`
}

// ProfileFromSDK converts a backend profile. A nil input yields nil.
func ProfileFromSDK(p *clinicsdk.Profile) *Profile {
	if p == nil {
		return nil
	}
	return &Profile{
		ID:                 p.ID,
		Role:               p.Role,
		FullName:           p.FullName,
		Email:              p.Email,
		CPF:                p.CPF,
		Phone:              p.Phone,
		MustChangePassword: p.MustChangePassword,
	}
}
