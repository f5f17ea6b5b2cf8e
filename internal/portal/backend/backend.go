// Package backend connects one portal visitor to the clinic backend through
// the client SDK. It keeps the visitor's SDK session so automatic token
// refreshes are written back to the session store instead of being lost.
package backend

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/billybuddy/internal/portal/session"
	"github.com/aussiebroadwan/billybuddy/internal/portal/views"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
)

// Conn is one visitor's link to the clinic backend.
type Conn struct {
	client *clinicsdk.Client
	logger *slog.Logger

	mu        sync.Mutex
	api       *clinicsdk.Session
	email     string
	onRefresh func(*session.Session)
}

func NewConn(client *clinicsdk.Client, logger *slog.Logger) *Conn {
	return &Conn{client: client, logger: logger}
}

// OnRefresh registers fn to receive the session after every automatic
// token refresh.
func (c *Conn) OnRefresh(fn func(*session.Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = fn
}

// SignIn returns *clinicsdk.MFARequiredError when the account has a second
// factor.
func (c *Conn) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	api, err := c.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return c.adopt(email, api), nil
}

// VerifyMFA completes a challenged sign-in.
func (c *Conn) VerifyMFA(ctx context.Context, email, mfaToken, code string) (*session.Session, error) {
	api, err := c.client.VerifyMFA(ctx, mfaToken, code)
	if err != nil {
		return nil, err
	}
	return c.adopt(email, api), nil
}

// Register creates a tutor account and immediately signs the new session
// out: registering never signs the visitor in.
func (c *Conn) Register(ctx context.Context, req clinicsdk.SignUpRequest) error {
	api, err := c.client.SignUp(ctx, req)
	if err != nil {
		return err
	}
	if err := api.SignOut(ctx); err != nil {
		c.logger.WarnContext(ctx, "failed to revoke registration session", slog.String("error", err.Error()))
	}
	return nil
}

// FetchProfile implements session.Remote.
func (c *Conn) FetchProfile(ctx context.Context, s *session.Session) (*session.Profile, error) {
	p, err := c.sdkSession(s).GetProfile(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	return session.ProfileFromSDK(p), nil
}

// Revoke implements session.Remote.
func (c *Conn) Revoke(ctx context.Context, s *session.Session) error {
	api := c.sdkSession(s)

	c.mu.Lock()
	if c.api == api {
		c.api = nil
	}
	c.mu.Unlock()

	return api.SignOut(ctx)
}

// API returns the data surface for s, or nil without a session.
func (c *Conn) API(s *session.Session) views.API {
	if s == nil {
		return nil
	}
	return c.sdkSession(s)
}

func (c *Conn) adopt(email string, api *clinicsdk.Session) *session.Session {
	c.mu.Lock()
	c.api = api
	c.email = email
	c.mu.Unlock()

	c.watch(api)
	return session.FromSDK(email, api)
}

// sdkSession returns the SDK session holding s's tokens. A session restored
// from persistence gets a new SDK session on first use.
func (c *Conn) sdkSession(s *session.Session) *clinicsdk.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.api != nil && c.api.RefreshToken() != "" && c.api.RefreshToken() == s.RefreshToken {
		return c.api
	}

	api := c.client.RestoreSession(s.UserID, s.AccessToken, s.RefreshToken, s.ExpiresAt)
	c.watch(api)
	c.api = api
	c.email = s.Email
	return api
}

func (c *Conn) watch(api *clinicsdk.Session) {
	api.OnRefresh(func(clinicsdk.TokenResponse) { c.refreshed(api) })
}

// refreshed reports a refresh of api unless another session replaced it.
func (c *Conn) refreshed(api *clinicsdk.Session) {
	c.mu.Lock()
	current, email, fn := c.api, c.email, c.onRefresh
	c.mu.Unlock()

	if current != api || fn == nil {
		return
	}
	fn(session.FromSDK(email, api))
}
