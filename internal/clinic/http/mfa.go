package http

import (
	"net/http"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/service"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
)

type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll starts TOTP enrolment.
//
//	@Summary	Enroll TOTP
//	@Tags		MFA
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Success	200	{object}	clinicsdk.MFAEnrollResponse
//	@Failure	400	{object}	clinicsdk.APIError	"MFA already enabled"
//	@Router		/v1/auth/mfa/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	e, err := h.MFAService.Enroll(r.Context(), actor(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, clinicsdk.MFAEnrollResponse{
		Secret:  e.Secret,
		URL:     e.URL,
		Issuer:  e.Issuer,
		Account: e.Account,
	})
}

// HandleVerify enables TOTP after checking a code.
//
//	@Summary	Verify TOTP enrolment
//	@Tags		MFA
//	@Accept		json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		request	body	clinicsdk.MFACodeRequest	true	"Current code"
//	@Success	204
//	@Failure	400	{object}	clinicsdk.APIError
//	@Router		/v1/auth/mfa/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req clinicsdk.MFACodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.MFAService.Verify(r.Context(), actor(r).UserID, req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemove disables TOTP after checking a code.
//
//	@Summary	Remove TOTP
//	@Tags		MFA
//	@Accept		json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		request	body	clinicsdk.MFACodeRequest	true	"Current code"
//	@Success	204
//	@Failure	400	{object}	clinicsdk.APIError
//	@Router		/v1/auth/mfa/remove [post].
func (h *MFAHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	var req clinicsdk.MFACodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.MFAService.Remove(r.Context(), actor(r).UserID, req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
