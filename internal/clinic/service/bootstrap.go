package service

import (
	"context"
	"crypto/subtle"
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

var (
	ErrBootstrapAlready             = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized        = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapFailedToCreateAdmin = errors.New("failed to create admin user")
)

// BootstrapService creates the first administrator of an empty backend.
type BootstrapService struct {
	Store store.Store
	Token string // empty disables bootstrap
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap returns the new admin's user id.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (string, error) {
	l := slogx.FromContext(ctx)

	if bootstrapped, _ := s.IsBootstrapped(ctx); bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return "", ErrBootstrapAlready
	}

	if s.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return "", ErrBootstrapUnauthorized
	}

	email, err := normaliseEmail(req.Email)
	if err != nil {
		return "", err
	}
	if err := validatePassword(req.Password); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.FullName) == "" {
		return "", invalid("full_name", "is required")
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return "", ErrBootstrapFailedToCreateAdmin
	}

	now := time.Now().UTC()
	adminID := idx.New().String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		err := tx.Users().CreateUser(ctx, domain.User{ID: adminID, Email: email, PasswordHash: hash, CreatedAt: now, UpdatedAt: now})
		if err != nil {
			l.Error("failed to create admin user", slog.String("admin_user_id", adminID), slog.Any("error", err))
			return ErrBootstrapFailedToCreateAdmin
		}
		err = tx.Profiles().CreateProfile(ctx, domain.Profile{
			ID:        adminID,
			Role:      role.Admin,
			FullName:  strings.TrimSpace(req.FullName),
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			l.Error("failed to create admin profile", slog.String("admin_user_id", adminID), slog.Any("error", err))
			return ErrBootstrapFailedToCreateAdmin
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	l.Info("successfully bootstrapped system", slog.String("admin_user_id", adminID))
	return adminID, nil
}
