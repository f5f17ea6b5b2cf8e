package controller_test

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/billybuddy/internal/portal/session"
	"github.com/aussiebroadwan/billybuddy/internal/portal/views"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

type account struct {
	userID     string
	password   string
	role       role.Role
	mustChange bool
	mfaCode    string
	// stall makes the profile fetch hang until the caller gives up.
	stall bool
}

// fakeBackend is an in-memory clinic backend.
type fakeBackend struct {
	mu        sync.Mutex
	accounts  map[string]*account
	signUps   []clinicsdk.SignUpRequest
	revokes   int
	signIns   int
	hold      chan struct{}
	onRefresh func(*session.Session)
}

func newFakeBackend(accounts ...*account) *fakeBackend {
	b := &fakeBackend{accounts: make(map[string]*account)}
	for _, a := range accounts {
		b.accounts[a.userID+"@x.com"] = a
	}
	return b
}

func (b *fakeBackend) byUser(id string) *account {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if a.userID == id {
			return a
		}
	}
	return nil
}

func (b *fakeBackend) sessionFor(email string, a *account) *session.Session {
	return &session.Session{
		UserID:       a.userID,
		Email:        email,
		AccessToken:  "access-" + a.userID,
		RefreshToken: "refresh-" + a.userID,
	}
}

func (b *fakeBackend) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	b.mu.Lock()
	b.signIns++
	hold := b.hold
	a, ok := b.accounts[email]
	b.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok || a.password != password {
		return nil, clinicsdk.ErrInvalidGrant
	}
	if a.mfaCode != "" {
		return nil, &clinicsdk.MFARequiredError{MFAToken: "mfa-" + a.userID, Methods: []string{"totp"}}
	}
	return b.sessionFor(email, a), nil
}

func (b *fakeBackend) VerifyMFA(_ context.Context, email, mfaToken, code string) (*session.Session, error) {
	b.mu.Lock()
	a, ok := b.accounts[email]
	b.mu.Unlock()

	if !ok || mfaToken != "mfa-"+a.userID || code != a.mfaCode {
		return nil, clinicsdk.ErrInvalidGrant
	}
	return b.sessionFor(email, a), nil
}

func (b *fakeBackend) Register(_ context.Context, req clinicsdk.SignUpRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signUps = append(b.signUps, req)
	if _, exists := b.accounts[req.Email]; exists {
		return clinicsdk.NewAPIError(409, clinicsdk.ErrorCodeConflict, "user already registered")
	}
	b.accounts[req.Email] = &account{userID: req.Email, password: req.Password, role: role.Tutor}
	return nil
}

func (b *fakeBackend) FetchProfile(ctx context.Context, s *session.Session) (*session.Profile, error) {
	a := b.byUser(s.UserID)
	if a == nil {
		return nil, clinicsdk.ErrNotFound
	}
	b.mu.Lock()
	stall := a.stall
	b.mu.Unlock()
	if stall {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return &session.Profile{ID: a.userID, Role: a.role, MustChangePassword: a.mustChange}, nil
}

// unstall lets later profile fetches for userID answer.
func (b *fakeBackend) unstall(userID string) {
	a := b.byUser(userID)
	b.mu.Lock()
	defer b.mu.Unlock()
	a.stall = false
}

func (b *fakeBackend) Revoke(context.Context, *session.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revokes++
	return nil
}

func (b *fakeBackend) revoked() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revokes
}

func (b *fakeBackend) signInCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.signIns
}

func (b *fakeBackend) API(s *session.Session) views.API {
	return &stubAPI{backend: b, userID: s.UserID}
}

func (b *fakeBackend) OnRefresh(fn func(*session.Session)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onRefresh = fn
}

// stubAPI implements the few calls the controller tests reach; anything
// else panics through the nil embedded interface.
type stubAPI struct {
	views.API
	backend *fakeBackend
	userID  string
}

func (s *stubAPI) UpdatePassword(_ context.Context, password string) error {
	a := s.backend.byUser(s.userID)
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	a.password = password
	a.mustChange = false
	return nil
}

func (s *stubAPI) VeterinarianCounts(context.Context) (*clinicsdk.VeterinarianCounts, error) {
	return &clinicsdk.VeterinarianCounts{Active: 2, Pending: 1}, nil
}

func (s *stubAPI) GetProfile(_ context.Context, id string) (*clinicsdk.Profile, error) {
	a := s.backend.byUser(id)
	if a == nil {
		return nil, clinicsdk.ErrNotFound
	}
	return &clinicsdk.Profile{ID: a.userID, Role: a.role}, nil
}
