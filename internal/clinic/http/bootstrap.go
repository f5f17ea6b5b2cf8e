package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/service"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP creates the first administrator.
//
//	@Summary		Bootstrap the clinic backend
//	@Description	Creates the first admin user and profile. Only available when a bootstrap token is configured and the user table is empty.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Security		APIKey
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token"
//	@Param			request				body		clinicsdk.BootstrapRequest	true	"First administrator"
//	@Success		201					{object}	clinicsdk.BootstrapResponse
//	@Failure		400					{object}	clinicsdk.APIError	"Invalid request body or validation failed"
//	@Failure		401					{object}	clinicsdk.APIError	"Missing or invalid bootstrap token, or already bootstrapped"
//	@Failure		404					{object}	clinicsdk.APIError	"Bootstrap not enabled"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	if h.BootstrapService.Token == "" {
		httpx.WriteError(w, http.StatusNotFound, clinicsdk.ErrorCodeNotFound, "bootstrap endpoint is not enabled")
		return
	}

	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "bootstrap token is required in X-Bootstrap-Token header")
		return
	}

	var req clinicsdk.BootstrapRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	adminID, err := h.BootstrapService.Bootstrap(r.Context(), token, domain.BootstrapData{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapAlready):
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "system has already been bootstrapped")
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid bootstrap token")
		case errors.Is(err, service.ErrBootstrapFailedToCreateAdmin):
			httpx.WriteError(w, http.StatusInternalServerError, clinicsdk.ErrorCodeServerError, "failed to create admin user")
		default:
			writeError(w, r, err)
		}
		return
	}

	l.Info("bootstrap completed", "admin_user_id", adminID)
	httpx.WriteJSON(w, http.StatusCreated, clinicsdk.BootstrapResponse{UserID: adminID})
}
