package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/store"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

// ProfileService applies the profile row policies:
//   - everyone reads and edits their own profile;
//   - veterinarians read tutor profiles;
//   - admins read and write every profile.
//
// Temporary passwords are only ever returned to admins.
type ProfileService struct {
	Store store.Store
}

func (s *ProfileService) Get(ctx context.Context, a Actor, id string) (domain.Profile, error) {
	p, err := s.Store.Profiles().GetProfile(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if !a.Is(id) && !a.IsAdmin() && !(a.IsVet() && p.Role == role.Tutor) {
		return domain.Profile{}, deny(ctx, a, "profile.get", slog.String("profile_id", id))
	}
	return redactProfile(a, p), nil
}

// List returns profiles of r (all roles when empty). Veterinarians may only
// list tutors.
func (s *ProfileService) List(ctx context.Context, a Actor, r role.Role, limit int) ([]domain.Profile, error) {
	switch {
	case a.IsAdmin():
	case a.IsVet() && (r == "" || r == role.Tutor):
		r = role.Tutor
	default:
		return nil, deny(ctx, a, "profile.list", slog.String("role", r.String()))
	}

	list, err := s.Store.Profiles().ListProfiles(ctx, r, limit)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = redactProfile(a, list[i])
	}
	return list, nil
}

// Create inserts a profile. Users may create their own tutor profile when
// none exists; admins may create any profile for an existing user.
func (s *ProfileService) Create(ctx context.Context, a Actor, p domain.Profile) (domain.Profile, error) {
	if p.ID == "" {
		p.ID = a.UserID
	}
	if p.Role == "" {
		p.Role = role.Tutor
	}
	if !p.Role.Valid() {
		return domain.Profile{}, invalid("role", "is not a known role")
	}

	if !a.IsAdmin() {
		if !a.Is(p.ID) || p.Role != role.Tutor {
			return domain.Profile{}, deny(ctx, a, "profile.create",
				slog.String("profile_id", p.ID), slog.String("role", p.Role.String()))
		}
		p.MustChangePassword = false
		p.TempPassword = ""
	}

	if p.Email == "" {
		u, err := s.Store.Users().GetUserByID(ctx, p.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Profile{}, invalid("id", "does not reference a user")
			}
			return domain.Profile{}, err
		}
		p.Email = u.Email
	}

	now := time.Now().UTC()
	p.FullName = strings.TrimSpace(p.FullName)
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.Store.Profiles().CreateProfile(ctx, p); err != nil {
		return domain.Profile{}, err
	}
	return s.Store.Profiles().GetProfile(ctx, p.ID)
}

// Update edits a profile. Only admins may touch the forced password change
// fields; everyone else is limited to their own contact data.
func (s *ProfileService) Update(ctx context.Context, a Actor, id string, u domain.ProfileUpdate) (domain.Profile, error) {
	if u.Empty() {
		return domain.Profile{}, invalid("profile", "no fields to update")
	}
	if !a.IsAdmin() {
		if !a.Is(id) {
			return domain.Profile{}, deny(ctx, a, "profile.update", slog.String("profile_id", id))
		}
		if u.MustChangePassword != nil || u.TempPassword != nil {
			return domain.Profile{}, deny(ctx, a, "profile.update.password_fields", slog.String("profile_id", id))
		}
	}

	if err := s.Store.Profiles().UpdateProfile(ctx, id, u); err != nil {
		return domain.Profile{}, err
	}
	p, err := s.Store.Profiles().GetProfile(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}
	return redactProfile(a, p), nil
}

func redactProfile(a Actor, p domain.Profile) domain.Profile {
	if !a.IsAdmin() {
		p.TempPassword = ""
	}
	return p
}
