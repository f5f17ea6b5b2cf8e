package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/store"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/cryptox"
	"github.com/aussiebroadwan/billybuddy/pkg/idx"
	"github.com/aussiebroadwan/billybuddy/pkg/jwtx"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
	"github.com/pquerna/otp/totp"
)

const (
	// MinPasswordLength applies to sign-up and every password change.
	MinPasswordLength = 6

	// MaxMFAAttempts is the number of wrong codes allowed per challenge.
	MaxMFAAttempts = 5

	DefaultMFATTL   = 5 * time.Minute
	DefaultResetTTL = time.Hour
)

// MFARequiredError is the challenge returned by a password sign-in of an
// MFA-enrolled user.
type MFARequiredError = clinicsdk.MFARequiredError

// AuthService implements the auth capability: accounts, credential grants,
// token rotation and password recovery.
type AuthService struct {
	Store      store.Store
	KeyManager *jwtx.KeyManager
	Notifier   Notifier
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	MFATTL     time.Duration
	ResetTTL   time.Duration
}

// SignUp creates a user with a tutor profile built from meta and signs it in.
func (s *AuthService) SignUp(ctx context.Context, email, password string, meta domain.SignUpMetadata) (*domain.TokenPair, error) {
	email, err := normaliseEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := domain.User{ID: idx.New().String(), Email: email, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}

	var pair *domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}

		err := tx.Profiles().CreateProfile(ctx, domain.Profile{
			ID:        user.ID,
			Role:      role.Tutor,
			FullName:  strings.TrimSpace(meta.FullName),
			Email:     email,
			CPF:       strings.TrimSpace(meta.CPF),
			Phone:     strings.TrimSpace(meta.Phone),
			BirthDate: strings.TrimSpace(meta.BirthDate),
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}

		pair, err = s.issue(ctx, tx, user, idx.New().String(), []string{jwtx.AMRPassword}, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("user signed up", slog.String("user_id", user.ID))
	return pair, nil
}

// SignInWithPassword verifies credentials. MFA-enrolled users receive an
// *MFARequiredError whose token completes the sign-in via ExchangeMFAOTP.
func (s *AuthService) SignInWithPassword(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("password sign-in rejected", slog.String("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	sessionID := idx.New().String()

	if u.HasMFA() {
		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, err
		}
		err = s.Store.MFASessions().CreateMFASession(ctx, domain.MFASession{
			ID:        cryptox.FingerprintToken(token),
			UserID:    u.ID,
			SessionID: sessionID,
			ExpiresAt: now.Add(orDefault(s.MFATTL, DefaultMFATTL)),
			CreatedAt: now,
		})
		if err != nil {
			return nil, err
		}
		return nil, &MFARequiredError{MFAToken: token, Methods: []string{"totp"}}
	}

	return s.issue(ctx, s.Store, u, sessionID, []string{jwtx.AMRPassword}, now)
}

// ExchangeMFAOTP completes a challenged sign-in with a TOTP code. A challenge
// allows MaxMFAAttempts wrong codes.
func (s *AuthService) ExchangeMFAOTP(ctx context.Context, mfaToken, code string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()
	id := cryptox.FingerprintToken(mfaToken)

	sess, err := s.Store.MFASessions().GetMFASession(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}

	if now.After(sess.ExpiresAt) {
		_ = s.Store.MFASessions().DeleteMFASession(ctx, id)
		return nil, ErrInvalidGrant
	}
	if sess.Attempts >= MaxMFAAttempts {
		_ = s.Store.MFASessions().DeleteMFASession(ctx, id)
		l.Warn("mfa challenge exceeded max attempts", slog.String("user_id", sess.UserID))
		return nil, ErrTooManyAttempts
	}

	u, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	if !u.HasMFA() || !totp.Validate(strings.TrimSpace(code), *u.MFASecret) {
		updated, err := s.Store.MFASessions().IncrementAttempts(ctx, id)
		if err != nil {
			l.Error("failed to increment mfa attempts", slog.Any("error", err))
			return nil, ErrInvalidGrant
		}
		l.Warn("mfa code rejected", slog.String("user_id", u.ID), slog.Int("attempts", updated.Attempts))
		return nil, ErrInvalidGrant
	}

	var pair *domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		pair, err = s.issue(ctx, tx, u, sess.SessionID, []string{jwtx.AMRPassword, jwtx.AMROTP}, now)
		if err != nil {
			return err
		}
		return tx.MFASessions().DeleteMFASession(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// ExchangeRefreshToken rotates a refresh token. Presenting a token that was
// already rotated revokes its whole session.
func (s *AuthService) ExchangeRefreshToken(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	fp := cryptox.FingerprintToken(refreshOpaque)

	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	if rt.Revoked {
		slogx.FromContext(ctx).Warn("revoked refresh token presented",
			slog.String("user_id", rt.UserID),
			slog.String("session_id", rt.SessionID),
		)
		_ = s.Store.RefreshTokens().RevokeSession(ctx, rt.SessionID)
		return nil, ErrInvalidRefresh
	}
	if now.After(rt.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	amr := append(slices.Clone(rt.AMR), jwtx.AMRRefresh)
	slices.Sort(amr)
	amr = slices.Compact(amr)

	var pair *domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		var err error
		pair, err = s.issue(ctx, tx, u, rt.SessionID, amr, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// SignOut revokes the session of the given refresh token, or sessionID when
// no token is supplied. Unknown tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, refreshOpaque, sessionID string) error {
	if refreshOpaque != "" {
		rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(refreshOpaque))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		sessionID = rt.SessionID
	}
	if sessionID == "" {
		return nil
	}
	return s.Store.RefreshTokens().RevokeSession(ctx, sessionID)
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// UpdatePassword sets a new password, clears a pending forced change and
// revokes every other session of the user.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, sessionID, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return err
		}
		if err := clearForcedChange(ctx, tx, userID); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeOtherSessions(ctx, userID, sessionID)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password updated", slog.String("user_id", userID))
	return nil
}

// ResetPasswordForEmail issues a single-use recovery token and hands it to
// the Notifier. Unknown emails succeed silently.
func (s *AuthService) ResetPasswordForEmail(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	u, err := s.Store.Users().GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Debug("password recovery for unknown email")
			return nil
		}
		return err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}
	err = s.Store.PasswordResets().CreatePasswordReset(ctx, domain.PasswordReset{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(orDefault(s.ResetTTL, DefaultResetTTL)),
		CreatedAt: now,
	})
	if err != nil {
		return err
	}

	if s.Notifier != nil {
		if err := s.Notifier.PasswordReset(ctx, u.Email, token); err != nil {
			l.Error("failed to deliver password reset", slog.String("user_id", u.ID), slog.Any("error", err))
		}
	}
	return nil
}

// ConfirmPasswordReset consumes a recovery token and sets a new password.
// Every session of the user is revoked.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}

	reset, err := s.Store.PasswordResets().GetPasswordResetByHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
		return ErrInvalidResetToken
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.PasswordResets().MarkUsed(ctx, reset.ID, time.Now().UTC()); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}
		if err := tx.Users().UpdatePasswordHash(ctx, reset.UserID, hash); err != nil {
			return err
		}
		if err := clearForcedChange(ctx, tx, reset.UserID); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllForUser(ctx, reset.UserID)
	})
}

// issue signs an access token and stores a new refresh token for the
// session.
func (s *AuthService) issue(
	ctx context.Context,
	st store.Store,
	u domain.User,
	sessionID string,
	amr []string,
	now time.Time,
) (*domain.TokenPair, error) {
	var r role.Role
	p, err := st.Profiles().GetProfile(ctx, u.ID)
	switch {
	case err == nil:
		r = p.Role
	case errors.Is(err, store.ErrNotFound):
		slogx.FromContext(ctx).Warn("issuing token for user without profile", slog.String("user_id", u.ID))
	default:
		return nil, err
	}

	accessTTL := orDefault(s.AccessTTL, jwtx.DefaultAccessTokenTTL)
	claims := jwtx.NewAccessClaims(jwtx.AccessClaimsParams{
		Subject:  u.ID,
		Session:  sessionID,
		Role:     r,
		AMR:      amr,
		Email:    u.Email,
		Issuer:   s.Issuer,
		Audience: s.Audience,
		TTL:      accessTTL,
		Now:      now,
	})
	access, err := s.KeyManager.GetSigner().Sign(claims)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	err = st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		SessionID: sessionID,
		AMR:       amr,
		ExpiresAt: now.Add(orDefault(s.RefreshTTL, jwtx.DefaultRefreshTokenTTL)),
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshOpaque,
		ExpiresIn:    accessTTL,
		UserID:       u.ID,
		Role:         r,
	}, nil
}

func clearForcedChange(ctx context.Context, st store.Store, userID string) error {
	cleared := false
	empty := ""
	err := st.Profiles().UpdateProfile(ctx, userID, domain.ProfileUpdate{
		MustChangePassword: &cleared,
		TempPassword:       &empty,
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func normaliseEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "is not a valid address")
	}
	return strings.ToLower(email), nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return invalid("password", "must be at least 6 characters")
	}
	return nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
