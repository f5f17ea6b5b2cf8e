package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/service"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/store"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

var (
	errInvalidRefresh = clinicsdk.NewAPIError(http.StatusUnauthorized, clinicsdk.ErrorCodeInvalidGrant,
		"refresh token is invalid, expired or revoked")
	errInvalidMFAToken = clinicsdk.NewAPIError(http.StatusUnauthorized, clinicsdk.ErrorCodeInvalidGrant,
		"mfa challenge is invalid or the code is wrong")
	errInvalidReset = clinicsdk.NewAPIError(http.StatusBadRequest, clinicsdk.ErrorCodeInvalidGrant,
		"reset token is invalid or expired")
	errEmailTaken = clinicsdk.NewAPIError(http.StatusConflict, clinicsdk.ErrorCodeConflict,
		"user already registered")
	errConflict = clinicsdk.NewAPIError(http.StatusConflict, clinicsdk.ErrorCodeConflict,
		"resource already exists")
)

// writeError maps service and store errors to their wire form. Anything
// unrecognised is logged and reported as a server error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var mfa *service.MFARequiredError
	if errors.As(err, &mfa) {
		mfa.WriteError(w)
		return
	}

	var ve *service.ValidationError
	if errors.As(err, &ve) {
		clinicsdk.NewAPIError(http.StatusBadRequest, clinicsdk.ErrorCodeValidation, ve.Error()).WriteError(w)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		clinicsdk.ErrInvalidGrant.WriteError(w)
	case errors.Is(err, service.ErrInvalidRefresh):
		errInvalidRefresh.WriteError(w)
	case errors.Is(err, service.ErrInvalidGrant):
		errInvalidMFAToken.WriteError(w)
	case errors.Is(err, service.ErrTooManyAttempts):
		clinicsdk.ErrTooManyRequests.WriteError(w)
	case errors.Is(err, service.ErrInvalidResetToken):
		errInvalidReset.WriteError(w)
	case errors.Is(err, service.ErrEmailTaken):
		errEmailTaken.WriteError(w)
	case errors.Is(err, service.ErrPermissionDenied):
		clinicsdk.ErrPermissionDenied.WriteError(w)
	case errors.Is(err, service.ErrValidation):
		clinicsdk.NewAPIError(http.StatusBadRequest, clinicsdk.ErrorCodeValidation, err.Error()).WriteError(w)
	case errors.Is(err, service.ErrInvalidTOTPCode),
		errors.Is(err, service.ErrMFANotEnrolled),
		errors.Is(err, service.ErrMFANotEnabled),
		errors.Is(err, service.ErrMFAAlreadyEnabled):
		clinicsdk.NewAPIError(http.StatusBadRequest, clinicsdk.ErrorCodeInvalidRequest, err.Error()).WriteError(w)
	case errors.Is(err, store.ErrNotFound):
		clinicsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, store.ErrAlreadyExists):
		errConflict.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		clinicsdk.ErrServerError.WriteError(w)
	}
}

// badRequest reports a malformed body or query.
func badRequest(w http.ResponseWriter, desc string) {
	httpx.WriteError(w, http.StatusBadRequest, clinicsdk.ErrorCodeInvalidRequest, desc)
}

// actor returns the caller authenticated by AuthnMiddleware.
func actor(r *http.Request) service.Actor {
	c, _ := httpx.ClaimsFromContext(r.Context())
	return service.Actor{UserID: c.Subject, Role: c.Role}
}

// sessionID returns the sign-in session of the access token.
func sessionID(r *http.Request) string {
	c, _ := httpx.ClaimsFromContext(r.Context())
	return c.SID
}
