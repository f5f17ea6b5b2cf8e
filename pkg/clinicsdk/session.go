package clinicsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

// ErrNoRefreshToken is returned when the access token expired and the
// session cannot renew it.
var ErrNoRefreshToken = errors.New("clinicsdk: access token expired and no refresh token available")

// Session performs calls on behalf of a signed-in user.
type Session struct {
	client *Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	userID       string
	role         role.Role
	onRefresh    func(TokenResponse)
}

// NewSession wraps an existing token pair.
func (c *Client) NewSession(tok TokenResponse) *Session {
	return &Session{
		client:       c,
		accessToken:  tok.AccessToken,
		refreshToken: tok.RefreshToken,
		expiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - refreshBuffer),
		userID:       tok.UserID,
		role:         tok.Role,
	}
}

// RestoreSession rebuilds a session from persisted tokens.
func (c *Client) RestoreSession(userID, accessToken, refreshToken string, expiresAt time.Time) *Session {
	return &Session{
		client:       c,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    expiresAt.Add(-refreshBuffer),
		userID:       userID,
	}
}

// OnRefresh registers fn to be called after every automatic token refresh.
func (s *Session) OnRefresh(fn func(TokenResponse)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = fn
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Role is the role claimed at sign-in; empty for restored sessions.
func (s *Session) Role() role.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// ExpiresAt is when the access token expires.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt.Add(refreshBuffer)
}

// SignOut revokes the refresh token server side. The session must not be
// used afterwards.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	refresh := s.refreshToken
	s.refreshToken = ""
	s.accessToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	if refresh == "" {
		return nil
	}
	return s.client.Revoke(ctx, refresh)
}

// validToken returns the access token, refreshing it first when it is about
// to expire.
func (s *Session) validToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.Unlock()
		return token, nil
	}
	if s.refreshToken == "" {
		s.mu.Unlock()
		return "", ErrNoRefreshToken
	}

	tok, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = tok.AccessToken
	s.refreshToken = tok.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - refreshBuffer)
	if tok.Role != "" {
		s.role = tok.Role
	}
	hook := s.onRefresh
	s.mu.Unlock()

	if hook != nil {
		hook(*tok)
	}
	return tok.AccessToken, nil
}

func (s *Session) do(ctx context.Context, method, path string, body, out any, expected int) error {
	token, err := s.validToken(ctx)
	if err != nil {
		return err
	}
	return s.client.do(ctx, method, path, token, body, out, expected)
}

func (s *Session) get(ctx context.Context, path string, out any) error {
	return s.do(ctx, http.MethodGet, path, nil, out, http.StatusOK)
}
