package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/billybuddy/pkg/cryptox"
	"github.com/aussiebroadwan/billybuddy/pkg/jwtx"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *jwtx.KeyManager {
	t.Helper()
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "clinic-test", NumKeys: 2})
	require.NoError(t, err)
	require.True(t, km.IsReady())
	return km
}

func TestSignAndVerify(t *testing.T) {
	t.Parallel()
	km := newManager(t)

	claims := jwtx.NewAccessClaims(jwtx.AccessClaimsParams{
		Subject: "user-1",
		Session: "sid-1",
		Role:    role.Veterinarian,
		AMR:     []string{"pwd"},
		Email:   "vet@example.com",
		Issuer:  "clinic-test",
	})

	token, err := km.GetSigner().Sign(claims)
	require.NoError(t, err)

	got, err := km.Verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, role.Veterinarian, got.Role)
	require.Equal(t, "sid-1", got.SID)
	require.True(t, got.HasMethod("pwd"))
	require.False(t, got.HasMethod("otp"))
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()
	km := newManager(t)
	other := newManager(t)

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		claims := jwtx.NewAccessClaims(jwtx.AccessClaimsParams{
			Subject: "u",
			Role:    role.Tutor,
			Issuer:  "clinic-test",
			TTL:     time.Minute,
			Now:     time.Now().Add(-time.Hour),
		})
		token, err := km.GetSigner().Sign(claims)
		require.NoError(t, err)

		_, err = km.Verifier.Verify(token)
		require.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		t.Parallel()
		claims := jwtx.NewAccessClaims(jwtx.AccessClaimsParams{Subject: "u", Role: role.Tutor, Issuer: "someone-else"})
		token, err := km.GetSigner().Sign(claims)
		require.NoError(t, err)

		_, err = km.Verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("foreign key", func(t *testing.T) {
		t.Parallel()
		claims := jwtx.NewAccessClaims(jwtx.AccessClaimsParams{Subject: "u", Role: role.Tutor, Issuer: "clinic-test"})
		token, err := other.GetSigner().Sign(claims)
		require.NoError(t, err)

		_, err = km.Verifier.Verify(token)
		require.Error(t, err)
	})
}

func TestNewSignerRejectsBadPEM(t *testing.T) {
	t.Parallel()

	_, err := jwtx.NewSigner("kid", []byte("not pem"))
	require.Error(t, err)

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	s, err := jwtx.NewSigner("kid", pemKey)
	require.NoError(t, err)
	require.Equal(t, "kid", s.KID())
}

func TestEphemeralKeyManagerRequiresIssuer(t *testing.T) {
	t.Parallel()

	_, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{})
	require.Error(t, err)
}
