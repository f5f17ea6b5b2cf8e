package clinicsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every backend call made through a Client.
const DefaultTimeout = 10 * time.Second

// refreshBuffer is subtracted from expires_in so tokens are refreshed early.
const refreshBuffer = 30 * time.Second

// Client performs unauthenticated calls against the clinic backend.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// New returns a Client with a bounded HTTP timeout.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SignUp creates an account with a tutor profile and returns a session for
// it.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	var tok TokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/signup", "", req, &tok, http.StatusCreated); err != nil {
		return nil, err
	}
	return c.NewSession(tok), nil
}

// SignInWithPassword returns *MFARequiredError when the account has a
// verified second factor.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return c.grant(ctx, url.Values{
		"grant_type": {"password"},
		"email":      {email},
		"password":   {password},
	})
}

// VerifyMFA completes a sign-in challenged with MFARequiredError.
func (c *Client) VerifyMFA(ctx context.Context, mfaToken, code string) (*Session, error) {
	return c.grant(ctx, url.Values{
		"grant_type": {"mfa_otp"},
		"mfa_token":  {mfaToken},
		"otp_code":   {code},
	})
}

// Refresh exchanges a refresh token for a new token pair. The old refresh
// token is revoked by the backend.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var tok TokenResponse
	err := c.postForm(ctx, "/v1/auth/token", url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}, &tok)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// Revoke ends the sign-in session the refresh token belongs to.
func (c *Client) Revoke(ctx context.Context, refreshToken string) error {
	return c.postForm(ctx, "/v1/auth/revoke", url.Values{"refresh_token": {refreshToken}}, nil)
}

// ResetPasswordForEmail requests a recovery token for the account. The
// backend answers the same way whether or not the account exists.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/recover", "", RecoverRequest{Email: email}, nil, http.StatusAccepted)
}

// ConfirmPasswordReset sets a new password using a recovery token.
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	req := RecoverConfirmRequest{Token: token, Password: password}
	return c.do(ctx, http.MethodPost, "/v1/auth/recover/confirm", "", req, nil, http.StatusNoContent)
}

// Bootstrap creates the first administrator on an empty backend.
func (c *Client) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*BootstrapResponse, error) {
	var out BootstrapResponse
	if err := c.doWithHeaders(ctx, http.MethodPost, "/v1/bootstrap", "", req, &out, http.StatusCreated,
		map[string]string{"X-Bootstrap-Token": token}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) grant(ctx context.Context, form url.Values) (*Session, error) {
	var tok TokenResponse
	if err := c.postForm(ctx, "/v1/auth/token", form, &tok); err != nil {
		return nil, err
	}
	return c.NewSession(tok), nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req, out, http.StatusOK)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any, expected int) error {
	return c.doWithHeaders(ctx, method, path, token, body, out, expected, nil)
}

func (c *Client) doWithHeaders(
	ctx context.Context,
	method, path, token string,
	body, out any,
	expected int,
	headers map[string]string,
) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.send(req, out, expected)
}

// send adds the API key, executes req and decodes the response into out
// when the status matches expected.
func (c *Client) send(req *http.Request, out any, expected int) error {
	if c.APIKey != "" {
		req.Header.Set("apikey", c.APIKey)
	}
	req.Header.Set("Accept", "application/json")
	if addr := ForwardedFor(req.Context()); addr != "" {
		req.Header.Set("X-Forwarded-For", addr)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expected {
		return parseErrorResponse(resp, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
