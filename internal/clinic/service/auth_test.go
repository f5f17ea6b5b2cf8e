package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/pkg/jwtx"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestSignUpCreatesTutorProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	pair, err := env.auth.SignUp(ctx, "Ana@Example.com", "secret1", domain.SignUpMetadata{
		FullName: "Ana Souza", CPF: "123", Phone: "11999990000", BirthDate: "1990-01-01",
	})
	require.NoError(t, err)
	require.Equal(t, role.Tutor, pair.Role)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := env.keys.Verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, pair.UserID, claims.Subject)
	require.Equal(t, role.Tutor, claims.Role)
	require.True(t, claims.HasMethod(jwtx.AMRPassword))

	p, err := env.store.Profiles().GetProfile(ctx, pair.UserID)
	require.NoError(t, err)
	require.Equal(t, "Ana Souza", p.FullName)
	require.Equal(t, "ana@example.com", p.Email)
	require.False(t, p.MustChangePassword)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.auth.SignUp(ctx, "ana@example.com", "secret1", domain.SignUpMetadata{})
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := env.auth.SignUp(ctx, "bob@example.com", "12345", domain.SignUpMetadata{})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := env.auth.SignUp(ctx, "not-an-email", "secret1", domain.SignUpMetadata{})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, "email", ve.Field)
	})
}

func TestSignInWithPassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.signUp(t, "ana@example.com")

	_, err := env.auth.SignInWithPassword(ctx, "ana@example.com", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.SignInWithPassword(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	pair, err := env.auth.SignInWithPassword(ctx, "ANA@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, role.Tutor, pair.Role)
}

func TestRefreshRotationAndReuse(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.signUp(t, "ana@example.com")

	first, err := env.auth.SignInWithPassword(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	second, err := env.auth.ExchangeRefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	claims, err := env.keys.Verifier.Verify(second.AccessToken)
	require.NoError(t, err)
	require.True(t, claims.HasMethod(jwtx.AMRRefresh))

	// Replaying the rotated token kills the session.
	_, err = env.auth.ExchangeRefreshToken(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	_, err = env.auth.ExchangeRefreshToken(ctx, second.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestSignOutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.signUp(t, "ana@example.com")

	pair, err := env.auth.SignInWithPassword(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, env.auth.SignOut(ctx, pair.RefreshToken, ""))
	require.NoError(t, env.auth.SignOut(ctx, pair.RefreshToken, ""))
	require.NoError(t, env.auth.SignOut(ctx, "unknown", ""))

	_, err = env.auth.ExchangeRefreshToken(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestMFASignIn(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.admin(t)

	enrol, err := env.mfa.Enroll(ctx, admin.UserID)
	require.NoError(t, err)
	require.Contains(t, enrol.URL, "otpauth://")

	require.ErrorIs(t, env.mfa.Verify(ctx, admin.UserID, "000000"), ErrInvalidTOTPCode)

	code, err := totp.GenerateCode(enrol.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, env.mfa.Verify(ctx, admin.UserID, code))

	_, err = env.auth.SignInWithPassword(ctx, "admin@example.com", "admin-pass")
	var challenge *MFARequiredError
	require.ErrorAs(t, err, &challenge)
	require.NotEmpty(t, challenge.MFAToken)

	_, err = env.auth.ExchangeMFAOTP(ctx, challenge.MFAToken, "000000")
	require.ErrorIs(t, err, ErrInvalidGrant)

	code, err = totp.GenerateCode(enrol.Secret, time.Now())
	require.NoError(t, err)
	pair, err := env.auth.ExchangeMFAOTP(ctx, challenge.MFAToken, code)
	require.NoError(t, err)
	require.Equal(t, role.Admin, pair.Role)

	claims, err := env.keys.Verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.True(t, claims.HasMethod(jwtx.AMROTP))

	// The challenge is single use.
	_, err = env.auth.ExchangeMFAOTP(ctx, challenge.MFAToken, code)
	require.ErrorIs(t, err, ErrInvalidGrant)

	t.Run("attempts are bounded", func(t *testing.T) {
		_, err := env.auth.SignInWithPassword(ctx, "admin@example.com", "admin-pass")
		var c *MFARequiredError
		require.ErrorAs(t, err, &c)

		for range MaxMFAAttempts {
			_, err = env.auth.ExchangeMFAOTP(ctx, c.MFAToken, "000000")
			require.ErrorIs(t, err, ErrInvalidGrant)
		}
		_, err = env.auth.ExchangeMFAOTP(ctx, c.MFAToken, "000000")
		require.ErrorIs(t, err, ErrTooManyAttempts)
	})

	t.Run("remove", func(t *testing.T) {
		code, err := totp.GenerateCode(enrol.Secret, time.Now())
		require.NoError(t, err)
		require.NoError(t, env.mfa.Remove(ctx, admin.UserID, code))
		require.ErrorIs(t, env.mfa.Remove(ctx, admin.UserID, code), ErrMFANotEnabled)

		_, err = env.auth.SignInWithPassword(ctx, "admin@example.com", "admin-pass")
		require.NoError(t, err)
	})
}

func TestUpdatePasswordClearsForcedChange(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.admin(t)
	vet, temp := env.vet(t, admin, "vet@example.com")

	p, err := env.store.Profiles().GetProfile(ctx, vet.UserID)
	require.NoError(t, err)
	require.True(t, p.MustChangePassword)
	require.Equal(t, temp, p.TempPassword)

	other, err := env.auth.SignInWithPassword(ctx, "vet@example.com", temp)
	require.NoError(t, err)
	current, err := env.auth.SignInWithPassword(ctx, "vet@example.com", temp)
	require.NoError(t, err)

	claims, err := env.keys.Verifier.Verify(current.AccessToken)
	require.NoError(t, err)

	require.ErrorIs(t, env.auth.UpdatePassword(ctx, vet.UserID, claims.SID, "short"), ErrValidation)
	require.NoError(t, env.auth.UpdatePassword(ctx, vet.UserID, claims.SID, "new-secret"))

	p, err = env.store.Profiles().GetProfile(ctx, vet.UserID)
	require.NoError(t, err)
	require.False(t, p.MustChangePassword)
	require.Empty(t, p.TempPassword)

	_, err = env.auth.ExchangeRefreshToken(ctx, other.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh, "other sessions are revoked")
	_, err = env.auth.ExchangeRefreshToken(ctx, current.RefreshToken)
	require.NoError(t, err, "current session survives")

	_, err = env.auth.SignInWithPassword(ctx, "vet@example.com", "new-secret")
	require.NoError(t, err)
}

func TestPasswordRecovery(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.signUp(t, "ana@example.com")

	require.NoError(t, env.auth.ResetPasswordForEmail(ctx, "nobody@example.com"))
	require.Empty(t, env.notifier.token("nobody@example.com"))

	require.NoError(t, env.auth.ResetPasswordForEmail(ctx, "ana@example.com"))
	token := env.notifier.token("ana@example.com")
	require.NotEmpty(t, token)

	require.ErrorIs(t, env.auth.ConfirmPasswordReset(ctx, "bogus", "new-secret"), ErrInvalidResetToken)
	require.NoError(t, env.auth.ConfirmPasswordReset(ctx, token, "new-secret"))
	require.ErrorIs(t, env.auth.ConfirmPasswordReset(ctx, token, "other-secret"), ErrInvalidResetToken)

	_, err := env.auth.SignInWithPassword(ctx, "ana@example.com", "new-secret")
	require.NoError(t, err)
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	b := &BootstrapService{Store: env.store, Token: "boot"}

	_, err := b.Bootstrap(ctx, "wrong", domain.BootstrapData{Email: "a@example.com", Password: "secret1", FullName: "A"})
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)

	id, err := b.Bootstrap(ctx, "boot", domain.BootstrapData{Email: "a@example.com", Password: "secret1", FullName: "A"})
	require.NoError(t, err)

	p, err := env.store.Profiles().GetProfile(ctx, id)
	require.NoError(t, err)
	require.Equal(t, role.Admin, p.Role)

	_, err = b.Bootstrap(ctx, "boot", domain.BootstrapData{Email: "b@example.com", Password: "secret1", FullName: "B"})
	require.ErrorIs(t, err, ErrBootstrapAlready)

	disabled := &BootstrapService{Store: newTestEnv(t).store}
	_, err = disabled.Bootstrap(ctx, "", domain.BootstrapData{Email: "a@example.com", Password: "secret1", FullName: "A"})
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)
}
