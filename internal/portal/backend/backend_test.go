package backend_test

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/clinictest"
	"github.com/aussiebroadwan/billybuddy/internal/portal/backend"
	"github.com/aussiebroadwan/billybuddy/internal/portal/session"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

func newConn(t *testing.T) (*clinictest.Server, *backend.Conn) {
	t.Helper()
	srv := clinictest.NewServer(t)
	return srv, backend.NewConn(srv.Client, slogx.Discard())
}

func TestSignInAndFetchProfile(t *testing.T) {
	ctx := context.Background()
	srv, conn := newConn(t)
	srv.Tutor(t, "ana@example.com", "secret1")

	s, err := conn.SignIn(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", s.Email)
	assert.NotEmpty(t, s.AccessToken)
	assert.NotEmpty(t, s.RefreshToken)

	p, err := conn.FetchProfile(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, s.UserID, p.ID)
	assert.Equal(t, role.Tutor, p.Role)
	assert.Equal(t, "Test Tutor", p.FullName)
	assert.False(t, p.Provisional)
}

func TestSignInWrongPassword(t *testing.T) {
	srv, conn := newConn(t)
	srv.Tutor(t, "ana@example.com", "secret1")

	_, err := conn.SignIn(context.Background(), "ana@example.com", "nope")
	require.True(t, clinicsdk.HasCode(err, clinicsdk.ErrorCodeInvalidGrant))
}

func TestRegisterLeavesNoSession(t *testing.T) {
	ctx := context.Background()
	_, conn := newConn(t)

	err := conn.Register(ctx, clinicsdk.SignUpRequest{
		Email:    "ana@example.com",
		Password: "secret1",
		Data:     clinicsdk.SignUpMetadata{FullName: "Ana Souza", CPF: "123", Phone: "11988887777", BirthDate: "1990-04-12"},
	})
	require.NoError(t, err)

	err = conn.Register(ctx, clinicsdk.SignUpRequest{Email: "ana@example.com", Password: "secret1"})
	require.True(t, clinicsdk.HasCode(err, clinicsdk.ErrorCodeConflict))

	s, err := conn.SignIn(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	p, err := conn.FetchProfile(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", p.FullName)
}

func TestRevokeInvalidatesRefreshToken(t *testing.T) {
	ctx := context.Background()
	srv, conn := newConn(t)
	srv.Tutor(t, "ana@example.com", "secret1")

	s, err := conn.SignIn(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, conn.Revoke(ctx, s))

	_, err = srv.Client.Refresh(ctx, s.RefreshToken)
	require.Error(t, err)
}

func TestRestoredSessionServesAPI(t *testing.T) {
	ctx := context.Background()
	srv, conn := newConn(t)
	srv.Tutor(t, "ana@example.com", "secret1")

	s, err := conn.SignIn(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	// A fresh connection only has the persisted tokens.
	other := backend.NewConn(srv.Client, slogx.Discard())
	assert.Nil(t, other.API(nil))

	p, err := other.API(s).GetProfile(ctx, s.UserID)
	require.NoError(t, err)
	assert.Equal(t, role.Tutor, p.Role)
}

func TestExpiredSessionRefreshesThroughHook(t *testing.T) {
	ctx := context.Background()
	srv, conn := newConn(t)
	srv.Tutor(t, "ana@example.com", "secret1")

	s, err := conn.SignIn(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	refreshed := make(chan *session.Session, 1)
	expired := *s
	expired.ExpiresAt = time.Now().Add(-time.Minute)

	restored := backend.NewConn(srv.Client, slogx.Discard())
	restored.OnRefresh(func(ns *session.Session) { refreshed <- ns })

	_, err = restored.FetchProfile(ctx, &expired)
	require.NoError(t, err)

	select {
	case ns := <-refreshed:
		assert.Equal(t, s.UserID, ns.UserID)
		assert.Equal(t, "ana@example.com", ns.Email)
		assert.NotEqual(t, s.RefreshToken, ns.RefreshToken)
	case <-time.After(time.Second):
		t.Fatal("refresh hook not called")
	}
}

func TestAdminSecondFactor(t *testing.T) {
	ctx := context.Background()
	srv, conn := newConn(t)
	admin := srv.Admin(t)

	enrol, err := admin.EnrollMFA(ctx)
	require.NoError(t, err)
	code, err := totp.GenerateCode(enrol.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, admin.VerifyMFAEnrollment(ctx, code))

	_, err = conn.SignIn(ctx, clinictest.AdminEmail, clinictest.AdminPassword)
	var challenge *clinicsdk.MFARequiredError
	require.ErrorAs(t, err, &challenge)

	code, err = totp.GenerateCode(enrol.Secret, time.Now())
	require.NoError(t, err)
	s, err := conn.VerifyMFA(ctx, clinictest.AdminEmail, challenge.MFAToken, code)
	require.NoError(t, err)

	p, err := conn.FetchProfile(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, role.Admin, p.Role)
}
