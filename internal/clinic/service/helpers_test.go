package service

import (
	"context"
	"sync"
	"testing"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/store/drivers/sqlite"
	"github.com/aussiebroadwan/billybuddy/pkg/jwtx"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
	"github.com/stretchr/testify/require"
)

const testIssuer = "test-clinic"

type captureNotifier struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (n *captureNotifier) PasswordReset(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tokens == nil {
		n.tokens = map[string]string{}
	}
	n.tokens[email] = token
	return nil
}

func (n *captureNotifier) token(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens[email]
}

type testEnv struct {
	store    *sqlite.Store
	keys     *jwtx.KeyManager
	notifier *captureNotifier
	auth     *AuthService
	mfa      *MFAService
	profiles *ProfileService
	vets     *VeterinarianService
	records  *RecordsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	keys, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: testIssuer, NumKeys: 1})
	require.NoError(t, err)

	n := &captureNotifier{}
	auth := &AuthService{Store: st, KeyManager: keys, Notifier: n, Issuer: testIssuer}

	return &testEnv{
		store:    st,
		keys:     keys,
		notifier: n,
		auth:     auth,
		mfa:      &MFAService{Store: st, Issuer: "BillyBuddy"},
		profiles: &ProfileService{Store: st},
		vets:     &VeterinarianService{Store: st, Auth: auth},
		records:  &RecordsService{Store: st},
	}
}

// signUp registers a tutor and returns its actor.
func (e *testEnv) signUp(t *testing.T, email string) Actor {
	t.Helper()
	pair, err := e.auth.SignUp(context.Background(), email, "secret1", domain.SignUpMetadata{FullName: "Tutor " + email})
	require.NoError(t, err)
	return Actor{UserID: pair.UserID, Role: role.Tutor}
}

// admin bootstraps the first admin and returns its actor.
func (e *testEnv) admin(t *testing.T) Actor {
	t.Helper()
	b := &BootstrapService{Store: e.store, Token: "boot"}
	id, err := b.Bootstrap(context.Background(), "boot", domain.BootstrapData{
		Email: "admin@example.com", Password: "admin-pass", FullName: "Admin",
	})
	require.NoError(t, err)
	return Actor{UserID: id, Role: role.Admin}
}

// vet creates an active vet through the admin flow.
func (e *testEnv) vet(t *testing.T, admin Actor, email string) (Actor, string) {
	t.Helper()
	v, temp, err := e.vets.Create(context.Background(), admin, domain.NewVeterinarian{
		Email: email, FullName: "Dr " + email, CRMV: "12345", UF: "sp",
	})
	require.NoError(t, err)
	return Actor{UserID: v.ID, Role: role.Veterinarian}, temp
}
