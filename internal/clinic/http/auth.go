package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/service"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleSignUp creates an account together with its tutor profile.
//
//	@Summary		Sign up
//	@Description	Creates a user and a tutor profile from the supplied metadata and signs the user in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		APIKey
//	@Param			request	body		clinicsdk.SignUpRequest		true	"Credentials and profile data"
//	@Success		201		{object}	clinicsdk.TokenResponse
//	@Failure		400		{object}	clinicsdk.APIError	"Validation failed"
//	@Failure		409		{object}	clinicsdk.APIError	"Email already registered"
//	@Router			/v1/auth/signup [post].
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req clinicsdk.SignUpRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	pair, err := h.AuthService.SignUp(r.Context(), req.Email, req.Password, domain.SignUpMetadata{
		FullName:  req.Data.FullName,
		CPF:       req.Data.CPF,
		Phone:     req.Data.Phone,
		BirthDate: req.Data.BirthDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tokenResponse(pair))
}

// HandleToken issues tokens for the password, refresh_token and mfa_otp
// grants.
//
//	@Summary		Token endpoint
//	@Description	Form encoded grants. Accounts with a verified TOTP factor receive 409 mfa_required with an mfa_token for the mfa_otp grant.
//	@Tags			Auth
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Security		APIKey
//	@Param			grant_type		formData	string	true	"password, refresh_token or mfa_otp"
//	@Param			email			formData	string	false	"password grant"
//	@Param			password		formData	string	false	"password grant"
//	@Param			refresh_token	formData	string	false	"refresh_token grant"
//	@Param			mfa_token		formData	string	false	"mfa_otp grant"
//	@Param			otp_code		formData	string	false	"mfa_otp grant"
//	@Success		200				{object}	clinicsdk.TokenResponse
//	@Failure		400				{object}	clinicsdk.APIError
//	@Failure		401				{object}	clinicsdk.APIError	"Invalid credentials or token"
//	@Failure		409				{object}	clinicsdk.MFARequiredError
//	@Failure		429				{object}	clinicsdk.APIError
//	@Router			/v1/auth/token [post].
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		clinicsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	var (
		pair *domain.TokenPair
		err  error
	)
	switch grant := r.PostForm.Get("grant_type"); grant {
	case "password":
		email, password := r.PostForm.Get("email"), r.PostForm.Get("password")
		if email == "" || password == "" {
			badRequest(w, "email and password are required")
			return
		}
		pair, err = h.AuthService.SignInWithPassword(r.Context(), email, password)
	case "refresh_token":
		refresh := r.PostForm.Get("refresh_token")
		if refresh == "" {
			badRequest(w, "refresh_token is required")
			return
		}
		pair, err = h.AuthService.ExchangeRefreshToken(r.Context(), refresh)
	case "mfa_otp":
		mfaToken, code := r.PostForm.Get("mfa_token"), r.PostForm.Get("otp_code")
		if mfaToken == "" || code == "" {
			badRequest(w, "mfa_token and otp_code are required")
			return
		}
		pair, err = h.AuthService.ExchangeMFAOTP(r.Context(), mfaToken, code)
	case "":
		clinicsdk.ErrInvalidRequest.WriteError(w)
		return
	default:
		slogx.FromContext(r.Context()).Info("unsupported grant type", "grant_type", grant)
		clinicsdk.ErrUnsupportedGrantType.WriteError(w)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleRevoke ends the sign-in session of a refresh token.
//
//	@Summary		Sign out
//	@Description	Revokes the session the refresh token belongs to. Always answers 200 so token validity is not disclosed.
//	@Tags			Auth
//	@Accept			x-www-form-urlencoded
//	@Security		APIKey
//	@Param			refresh_token	formData	string	true	"Refresh token"
//	@Success		200
//	@Router			/v1/auth/revoke [post].
func (h *AuthHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		clinicsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	refresh := strings.TrimSpace(r.PostForm.Get("refresh_token"))
	if refresh != "" {
		if err := h.AuthService.SignOut(r.Context(), refresh, ""); err != nil {
			slogx.FromContext(r.Context()).Error("failed to revoke session", "error", err)
		}
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusOK)
}

// HandleGetUser returns the authenticated user.
//
//	@Summary	Current user
//	@Tags		Auth
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Success	200	{object}	clinicsdk.User
//	@Failure	401	{object}	clinicsdk.APIError
//	@Router		/v1/auth/user [get].
func (h *AuthHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.AuthService.GetUser(r.Context(), actor(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSDKUser(u))
}

// HandleUpdateUser changes the password of the authenticated user. A pending
// forced change is cleared and every other session is revoked.
//
//	@Summary	Update password
//	@Tags		Auth
//	@Accept		json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		request	body	clinicsdk.UpdateUserRequest	true	"New password"
//	@Success	204
//	@Failure	400	{object}	clinicsdk.APIError
//	@Failure	401	{object}	clinicsdk.APIError
//	@Router		/v1/auth/user [put].
func (h *AuthHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req clinicsdk.UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.AuthService.UpdatePassword(r.Context(), actor(r).UserID, sessionID(r), req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRecover starts a password recovery.
//
//	@Summary		Request password recovery
//	@Description	Always answers 202 whether or not the email is registered.
//	@Tags			Auth
//	@Accept			json
//	@Security		APIKey
//	@Param			request	body	clinicsdk.RecoverRequest	true	"Account email"
//	@Success		202
//	@Router			/v1/auth/recover [post].
func (h *AuthHandler) HandleRecover(w http.ResponseWriter, r *http.Request) {
	var req clinicsdk.RecoverRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.AuthService.ResetPasswordForEmail(r.Context(), req.Email); err != nil {
		slogx.FromContext(r.Context()).Error("password recovery failed", "error", err)
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleRecoverConfirm sets a new password with a recovery token.
//
//	@Summary	Confirm password recovery
//	@Tags		Auth
//	@Accept		json
//	@Security	APIKey
//	@Param		request	body	clinicsdk.RecoverConfirmRequest	true	"Token and new password"
//	@Success	204
//	@Failure	400	{object}	clinicsdk.APIError
//	@Router		/v1/auth/recover/confirm [post].
func (h *AuthHandler) HandleRecoverConfirm(w http.ResponseWriter, r *http.Request) {
	var req clinicsdk.RecoverConfirmRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.AuthService.ConfirmPasswordReset(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
