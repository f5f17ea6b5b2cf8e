package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/store"
	"github.com/aussiebroadwan/billybuddy/pkg/cryptox"
	"github.com/aussiebroadwan/billybuddy/pkg/idx"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

// VeterinarianService manages vet accounts. Admins create, edit, validate and
// reset vets; vets edit themselves; everyone signed in reads active vets.
type VeterinarianService struct {
	Store store.Store
	Auth  *AuthService
}

// Create provisions the user, profile and registration of a vet in one
// transaction. The returned temporary password must be changed on first
// login.
func (s *VeterinarianService) Create(ctx context.Context, a Actor, in domain.NewVeterinarian) (domain.Veterinarian, string, error) {
	if !a.IsAdmin() {
		return domain.Veterinarian{}, "", deny(ctx, a, "veterinarian.create")
	}

	email, err := normaliseEmail(in.Email)
	if err != nil {
		return domain.Veterinarian{}, "", err
	}
	if strings.TrimSpace(in.FullName) == "" {
		return domain.Veterinarian{}, "", invalid("full_name", "is required")
	}
	if strings.TrimSpace(in.CRMV) == "" {
		return domain.Veterinarian{}, "", invalid("crmv", "is required")
	}
	uf, err := normaliseUF(in.UF)
	if err != nil {
		return domain.Veterinarian{}, "", err
	}

	temp, err := cryptox.GenerateTemporaryPassword()
	if err != nil {
		return domain.Veterinarian{}, "", err
	}
	hash, err := cryptox.HashPassword(temp)
	if err != nil {
		return domain.Veterinarian{}, "", err
	}

	now := time.Now().UTC()
	id := idx.New().String()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		err := tx.Users().CreateUser(ctx, domain.User{ID: id, Email: email, PasswordHash: hash, CreatedAt: now, UpdatedAt: now})
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}

		err = tx.Profiles().CreateProfile(ctx, domain.Profile{
			ID:                 id,
			Role:               role.Veterinarian,
			FullName:           strings.TrimSpace(in.FullName),
			Email:              email,
			CPF:                strings.TrimSpace(in.CPF),
			Phone:              strings.TrimSpace(in.Phone),
			MustChangePassword: true,
			TempPassword:       temp,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		if err != nil {
			return err
		}

		return tx.Veterinarians().CreateVeterinarian(ctx, domain.Veterinarian{
			ID:                 id,
			CRMV:               strings.TrimSpace(in.CRMV),
			UF:                 uf,
			ClinicName:         strings.TrimSpace(in.ClinicName),
			Status:             domain.VetActive,
			ContractValidUntil: strings.TrimSpace(in.ContractValidUntil),
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	})
	if err != nil {
		return domain.Veterinarian{}, "", err
	}

	slogx.FromContext(ctx).Info("veterinarian created",
		slog.String("vet_id", id),
		slog.String("admin_id", a.UserID),
	)

	v, err := s.Store.Veterinarians().GetVeterinarian(ctx, id)
	if err != nil {
		return domain.Veterinarian{}, "", err
	}
	return v, temp, nil
}

// Get returns a vet joined with its profile. Non-admins only see active vets
// other than themselves.
func (s *VeterinarianService) Get(ctx context.Context, a Actor, id string) (domain.Veterinarian, error) {
	v, err := s.Store.Veterinarians().GetVeterinarian(ctx, id)
	if err != nil {
		return domain.Veterinarian{}, err
	}
	if !a.IsAdmin() && !a.Is(id) && v.Status != domain.VetActive {
		return domain.Veterinarian{}, deny(ctx, a, "veterinarian.get", slog.String("vet_id", id))
	}
	return redactVet(a, v), nil
}

// List returns vets newest first. Non-admins are limited to active vets.
func (s *VeterinarianService) List(ctx context.Context, a Actor, status domain.VetStatus, limit int) ([]domain.Veterinarian, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("status", "must be ATIVO, INATIVO or PENDENTE")
	}
	if !a.IsAdmin() {
		if status != "" && status != domain.VetActive {
			return nil, deny(ctx, a, "veterinarian.list", slog.String("status", string(status)))
		}
		status = domain.VetActive
	}

	list, err := s.Store.Veterinarians().ListVeterinarians(ctx, status, limit)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = redactVet(a, list[i])
	}
	return list, nil
}

// Update edits profile and registration fields. Admins edit any vet; vets
// edit themselves.
func (s *VeterinarianService) Update(ctx context.Context, a Actor, id string, e domain.VeterinarianEdit) (domain.Veterinarian, error) {
	if !a.IsAdmin() && !a.Is(id) {
		return domain.Veterinarian{}, deny(ctx, a, "veterinarian.update", slog.String("vet_id", id))
	}

	profile := domain.ProfileUpdate{FullName: e.Profile.FullName, CPF: e.Profile.CPF, Phone: e.Profile.Phone}
	if e.Vet.UF != nil {
		uf, err := normaliseUF(*e.Vet.UF)
		if err != nil {
			return domain.Veterinarian{}, err
		}
		e.Vet.UF = &uf
	}
	if e.Vet.CRMV != nil && strings.TrimSpace(*e.Vet.CRMV) == "" {
		return domain.Veterinarian{}, invalid("crmv", "must not be empty")
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Veterinarians().GetVeterinarian(ctx, id); err != nil {
			return err
		}
		if !profile.Empty() {
			if err := tx.Profiles().UpdateProfile(ctx, id, profile); err != nil {
				return err
			}
		}
		return tx.Veterinarians().UpdateVeterinarian(ctx, id, e.Vet)
	})
	if err != nil {
		return domain.Veterinarian{}, err
	}

	v, err := s.Store.Veterinarians().GetVeterinarian(ctx, id)
	if err != nil {
		return domain.Veterinarian{}, err
	}
	return redactVet(a, v), nil
}

// SetStatus moves a vet between ATIVO, INATIVO and PENDENTE. Admin only.
func (s *VeterinarianService) SetStatus(ctx context.Context, a Actor, id string, status domain.VetStatus) (domain.Veterinarian, error) {
	if !a.IsAdmin() {
		return domain.Veterinarian{}, deny(ctx, a, "veterinarian.status", slog.String("vet_id", id))
	}
	if !status.Valid() {
		return domain.Veterinarian{}, invalid("status", "must be ATIVO, INATIVO or PENDENTE")
	}

	if err := s.Store.Veterinarians().UpdateVeterinarianStatus(ctx, id, status); err != nil {
		return domain.Veterinarian{}, err
	}

	slogx.FromContext(ctx).Info("veterinarian status changed",
		slog.String("vet_id", id),
		slog.String("status", string(status)),
	)
	return s.Store.Veterinarians().GetVeterinarian(ctx, id)
}

// ResetPassword sends a recovery token to the vet's email. Admin only.
func (s *VeterinarianService) ResetPassword(ctx context.Context, a Actor, id string) error {
	if !a.IsAdmin() {
		return deny(ctx, a, "veterinarian.password_reset", slog.String("vet_id", id))
	}
	v, err := s.Store.Veterinarians().GetVeterinarian(ctx, id)
	if err != nil {
		return err
	}
	return s.Auth.ResetPasswordForEmail(ctx, v.Profile.Email)
}

// Counts feeds the admin dashboard. Admin only.
func (s *VeterinarianService) Counts(ctx context.Context, a Actor) (map[domain.VetStatus]int, error) {
	if !a.IsAdmin() {
		return nil, deny(ctx, a, "veterinarian.counts")
	}
	return s.Store.Veterinarians().CountByStatus(ctx)
}

func redactVet(a Actor, v domain.Veterinarian) domain.Veterinarian {
	if v.Profile != nil {
		p := redactProfile(a, *v.Profile)
		v.Profile = &p
	}
	return v
}

func normaliseUF(uf string) (string, error) {
	uf = strings.ToUpper(strings.TrimSpace(uf))
	if len(uf) != 2 || uf[0] < 'A' || uf[0] > 'Z' || uf[1] < 'A' || uf[1] > 'Z' {
		return "", invalid("uf", "must be a two letter state code")
	}
	return uf, nil
}
