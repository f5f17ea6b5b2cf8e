package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	clinichttp "github.com/aussiebroadwan/billybuddy/internal/clinic/http"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/service"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/store/drivers/sqlite"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/jwtx"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey    = "project-key"
	testBootstrap = "boot-token"
)

type captureNotifier struct{ last string }

func (n *captureNotifier) PasswordReset(_ context.Context, _, token string) error {
	n.last = token
	return nil
}

type testServer struct {
	client   *clinicsdk.Client
	url      string
	notifier *captureNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	keys, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "test-clinic", NumKeys: 1})
	require.NoError(t, err)

	n := &captureNotifier{}
	auth := &service.AuthService{Store: st, KeyManager: keys, Notifier: n, Issuer: "test-clinic"}

	router := clinichttp.NewRouter(keys.KeySet, keys.Verifier, testAPIKey, "test", st, slogx.Discard())
	router.AuthService = auth
	router.MFAService = &service.MFAService{Store: st, Issuer: "BillyBuddy"}
	router.ProfileService = &service.ProfileService{Store: st}
	router.VeterinarianService = &service.VeterinarianService{Store: st, Auth: auth}
	router.RecordsService = &service.RecordsService{Store: st}
	router.BootstrapService = &service.BootstrapService{Store: st, Token: testBootstrap}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{client: clinicsdk.New(srv.URL, testAPIKey), url: srv.URL, notifier: n}
}

func (s *testServer) admin(t *testing.T) *clinicsdk.Session {
	t.Helper()
	ctx := context.Background()
	_, err := s.client.Bootstrap(ctx, testBootstrap, clinicsdk.BootstrapRequest{
		Email: "admin@example.com", Password: "admin-pass", FullName: "Admin",
	})
	require.NoError(t, err)
	sess, err := s.client.SignInWithPassword(ctx, "admin@example.com", "admin-pass")
	require.NoError(t, err)
	return sess
}

func TestAPIKeyRequired(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.url+"/v1/auth/recover", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, err = clinicsdk.New(srv.url, "wrong").SignInWithPassword(context.Background(), "a@example.com", "secret1")
	require.True(t, clinicsdk.HasCode(err, clinicsdk.ErrorCodeInvalidAPIKey))

	health, err := clinicsdk.New(srv.url, "").Livez(context.Background())
	require.NoError(t, err, "health probes skip the api key")
	require.Equal(t, "ok", health.Status)

	ready, err := srv.client.Readyz(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Database)
}

func TestTutorSignUpAndProfile(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	sess, err := srv.client.SignUp(ctx, clinicsdk.SignUpRequest{
		Email:    "ana@example.com",
		Password: "secret1",
		Data:     clinicsdk.SignUpMetadata{FullName: "Ana Souza", CPF: "123", Phone: "119", BirthDate: "1990-01-01"},
	})
	require.NoError(t, err)
	require.Equal(t, role.Tutor, sess.Role())

	p, err := sess.GetProfile(ctx, sess.UserID())
	require.NoError(t, err)
	require.Equal(t, "Ana Souza", p.FullName)
	require.False(t, p.MustChangePassword)

	_, err = srv.client.SignUp(ctx, clinicsdk.SignUpRequest{Email: "ana@example.com", Password: "secret1"})
	require.True(t, clinicsdk.HasCode(err, clinicsdk.ErrorCodeConflict))

	_, err = srv.client.SignInWithPassword(ctx, "ana@example.com", "wrong-pass")
	var apiErr *clinicsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "invalid login credentials", apiErr.Description)

	_, err = sess.CreateVeterinarian(ctx, clinicsdk.CreateVeterinarianRequest{Email: "v@example.com", FullName: "V", CRMV: "1", UF: "SP"})
	require.True(t, clinicsdk.HasCode(err, clinicsdk.ErrorCodePermissionDenied))

	pet, err := sess.CreatePatient(ctx, clinicsdk.Patient{Name: "Rex", Species: "Cão"})
	require.NoError(t, err)
	pets, err := sess.ListPatients(ctx, clinicsdk.ListOptions{})
	require.NoError(t, err)
	require.Len(t, pets, 1)
	require.Equal(t, pet.ID, pets[0].ID)

	require.NoError(t, sess.SignOut(ctx))
	_, err = srv.client.Refresh(ctx, "anything")
	require.True(t, clinicsdk.HasCode(err, clinicsdk.ErrorCodeInvalidGrant))
}

func TestVeterinarianFirstLogin(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	admin := srv.admin(t)
	require.Equal(t, role.Admin, admin.Role())

	created, err := admin.CreateVeterinarian(ctx, clinicsdk.CreateVeterinarianRequest{
		Email: "vet@example.com", FullName: "Dra. Vet", CRMV: "4321", UF: "sp", ClinicName: "Billy",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.TempPassword)
	require.Equal(t, clinicsdk.VetStatusActive, created.Veterinarian.Status)
	require.True(t, created.Veterinarian.Profile.MustChangePassword)

	vet, err := srv.client.SignInWithPassword(ctx, "vet@example.com", created.TempPassword)
	require.NoError(t, err)
	require.Equal(t, role.Veterinarian, vet.Role())

	p, err := vet.GetProfile(ctx, vet.UserID())
	require.NoError(t, err)
	require.True(t, p.MustChangePassword)
	require.Empty(t, p.TempPassword, "only admins see the temporary password")

	require.True(t, clinicsdk.HasCode(vet.UpdatePassword(ctx, "123"), clinicsdk.ErrorCodeValidation))
	require.NoError(t, vet.UpdatePassword(ctx, "new-secret"))

	p, err = vet.GetProfile(ctx, vet.UserID())
	require.NoError(t, err)
	require.False(t, p.MustChangePassword)

	counts, err := admin.VeterinarianCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, counts.Active)

	v, err := admin.SetVeterinarianStatus(ctx, vet.UserID(), clinicsdk.VetStatusInactive)
	require.NoError(t, err)
	require.Equal(t, clinicsdk.VetStatusInactive, v.Status)

	_, err = vet.VeterinarianCounts(ctx)
	require.True(t, clinicsdk.HasCode(err, clinicsdk.ErrorCodePermissionDenied))

	require.NoError(t, admin.ResetVeterinarianPassword(ctx, vet.UserID()))
	require.NotEmpty(t, srv.notifier.last)
	require.NoError(t, srv.client.ConfirmPasswordReset(ctx, srv.notifier.last, "reset-secret"))

	_, err = srv.client.SignInWithPassword(ctx, "vet@example.com", "reset-secret")
	require.NoError(t, err)
}

func TestAdminMFASignIn(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	admin := srv.admin(t)

	enrol, err := admin.EnrollMFA(ctx)
	require.NoError(t, err)
	code, err := totp.GenerateCode(enrol.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, admin.VerifyMFAEnrollment(ctx, code))

	_, err = srv.client.SignInWithPassword(ctx, "admin@example.com", "admin-pass")
	var challenge *clinicsdk.MFARequiredError
	require.ErrorAs(t, err, &challenge)
	require.Equal(t, []string{"totp"}, challenge.Methods)

	code, err = totp.GenerateCode(enrol.Secret, time.Now())
	require.NoError(t, err)
	sess, err := srv.client.VerifyMFA(ctx, challenge.MFAToken, code)
	require.NoError(t, err)
	require.Equal(t, role.Admin, sess.Role())

	u, err := sess.GetUser(ctx)
	require.NoError(t, err)
	require.True(t, u.MFAEnabled)
}

func TestBootstrapEndpoint(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	_, err := srv.client.Bootstrap(ctx, "wrong", clinicsdk.BootstrapRequest{Email: "a@example.com", Password: "secret1", FullName: "A"})
	var apiErr *clinicsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	srv.admin(t)

	_, err = srv.client.Bootstrap(ctx, testBootstrap, clinicsdk.BootstrapRequest{Email: "b@example.com", Password: "secret1", FullName: "B"})
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "system has already been bootstrapped", apiErr.Description)
}
