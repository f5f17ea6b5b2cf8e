package clinicsdk

import (
	"context"
	"net/http"
)

// GetUser returns the auth identity behind the session.
func (s *Session) GetUser(ctx context.Context) (*User, error) {
	var u User
	if err := s.get(ctx, "/v1/auth/user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdatePassword changes the password and clears a pending forced change.
// Other sign-in sessions of the user are revoked.
func (s *Session) UpdatePassword(ctx context.Context, password string) error {
	return s.do(ctx, http.MethodPut, "/v1/auth/user", UpdateUserRequest{Password: password}, nil, http.StatusNoContent)
}

// EnrollMFA starts TOTP enrolment; the factor is active after VerifyMFAEnrollment.
func (s *Session) EnrollMFA(ctx context.Context) (*MFAEnrollResponse, error) {
	var out MFAEnrollResponse
	if err := s.do(ctx, http.MethodPost, "/v1/auth/mfa/enroll", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) VerifyMFAEnrollment(ctx context.Context, code string) error {
	return s.do(ctx, http.MethodPost, "/v1/auth/mfa/verify", MFACodeRequest{Code: code}, nil, http.StatusNoContent)
}

func (s *Session) RemoveMFA(ctx context.Context, code string) error {
	return s.do(ctx, http.MethodPost, "/v1/auth/mfa/remove", MFACodeRequest{Code: code}, nil, http.StatusNoContent)
}
