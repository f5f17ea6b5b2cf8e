// Package clinictest runs an in-memory clinic backend for tests of its
// clients.
package clinictest

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	clinichttp "github.com/aussiebroadwan/billybuddy/internal/clinic/http"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/service"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/store/drivers/sqlite"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/jwtx"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

const (
	APIKey         = "test-project-key"
	BootstrapToken = "test-bootstrap-token"

	AdminEmail    = "admin@example.com"
	AdminPassword = "admin-pass"
)

// Server is a clinic backend on a local listener, backed by SQLite in
// memory.
type Server struct {
	URL    string
	Client *clinicsdk.Client
}

// NewServer starts a backend that is closed when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	keys, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "clinictest", NumKeys: 1})
	require.NoError(t, err)

	auth := &service.AuthService{
		Store:      st,
		KeyManager: keys,
		Notifier:   service.LogNotifier{Logger: slogx.Discard()},
		Issuer:     "clinictest",
	}

	router := clinichttp.NewRouter(keys.KeySet, keys.Verifier, APIKey, "test", st, slogx.Discard())
	router.AuthService = auth
	router.MFAService = &service.MFAService{Store: st, Issuer: "BillyBuddy"}
	router.ProfileService = &service.ProfileService{Store: st}
	router.VeterinarianService = &service.VeterinarianService{Store: st, Auth: auth}
	router.RecordsService = &service.RecordsService{Store: st}
	router.BootstrapService = &service.BootstrapService{Store: st, Token: BootstrapToken}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &Server{URL: srv.URL, Client: clinicsdk.New(srv.URL, APIKey)}
}

// Admin bootstraps the administrator account and signs it in.
func (s *Server) Admin(t testing.TB) *clinicsdk.Session {
	t.Helper()
	ctx := context.Background()

	_, err := s.Client.Bootstrap(ctx, BootstrapToken, clinicsdk.BootstrapRequest{
		Email: AdminEmail, Password: AdminPassword, FullName: "Admin",
	})
	require.NoError(t, err)

	sess, err := s.Client.SignInWithPassword(ctx, AdminEmail, AdminPassword)
	require.NoError(t, err)
	return sess
}

// Tutor signs up a tutor and returns its session.
func (s *Server) Tutor(t testing.TB, email, password string) *clinicsdk.Session {
	t.Helper()

	sess, err := s.Client.SignUp(context.Background(), clinicsdk.SignUpRequest{
		Email:    email,
		Password: password,
		Data:     clinicsdk.SignUpMetadata{FullName: "Test Tutor", CPF: "123.456.789-00", Phone: "11988887777"},
	})
	require.NoError(t, err)
	return sess
}

// Veterinarian creates a veterinarian through admin and returns its
// temporary password.
func (s *Server) Veterinarian(t testing.TB, admin *clinicsdk.Session, email string) string {
	t.Helper()

	res, err := admin.CreateVeterinarian(context.Background(), clinicsdk.CreateVeterinarianRequest{
		Email:      email,
		FullName:   "Dra. Test",
		CPF:        "987.654.321-00",
		Phone:      "11977776666",
		CRMV:       "12345",
		UF:         "SP",
		ClinicName: "Clinica Test",
	})
	require.NoError(t, err)
	return res.TempPassword
}
