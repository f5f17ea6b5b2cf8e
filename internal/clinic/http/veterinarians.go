package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/service"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
)

type VeterinariansHandler struct {
	VeterinarianService *service.VeterinarianService
}

// HandleList lists veterinarians joined with their profiles.
//
//	@Summary		List veterinarians
//	@Description	Non-admin callers only see ATIVO veterinarians.
//	@Tags			Veterinarians
//	@Produce		json
//	@Security		APIKey
//	@Security		BearerAuth
//	@Param			status	query		string	false	"ATIVO, INATIVO or PENDENTE"
//	@Param			limit	query		int		false	"Maximum rows"
//	@Success		200		{array}		clinicsdk.Veterinarian
//	@Failure		403		{object}	clinicsdk.APIError
//	@Router			/v1/veterinarians [get].
func (h *VeterinariansHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	status := domain.VetStatus(strings.ToUpper(r.URL.Query().Get("status")))
	list, err := h.VeterinarianService.List(r.Context(), actor(r), status, httpx.QueryInt(r, "limit", 0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapSlice(list, toSDKVeterinarian))
}

// HandleGet returns one veterinarian.
//
//	@Summary	Get veterinarian
//	@Tags		Veterinarians
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Veterinarian id"
//	@Success	200	{object}	clinicsdk.Veterinarian
//	@Failure	403	{object}	clinicsdk.APIError
//	@Failure	404	{object}	clinicsdk.APIError
//	@Router		/v1/veterinarians/{id} [get].
func (h *VeterinariansHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.VeterinarianService.Get(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSDKVeterinarian(v))
}

// HandleCreate provisions a veterinarian account with a temporary password.
//
//	@Summary		Create veterinarian
//	@Description	The temporary password is returned once; the vet must change it on first login.
//	@Tags			Veterinarians
//	@Accept			json
//	@Produce		json
//	@Security		APIKey
//	@Security		BearerAuth
//	@Param			request	body		clinicsdk.CreateVeterinarianRequest	true	"Veterinarian"
//	@Success		201		{object}	clinicsdk.CreateVeterinarianResponse
//	@Failure		400		{object}	clinicsdk.APIError
//	@Failure		403		{object}	clinicsdk.APIError
//	@Failure		409		{object}	clinicsdk.APIError	"Email already registered"
//	@Router			/v1/veterinarians [post].
func (h *VeterinariansHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req clinicsdk.CreateVeterinarianRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	v, temp, err := h.VeterinarianService.Create(r.Context(), actor(r), domain.NewVeterinarian{
		Email:              req.Email,
		FullName:           req.FullName,
		CPF:                req.CPF,
		Phone:              req.Phone,
		CRMV:               req.CRMV,
		UF:                 req.UF,
		ClinicName:         req.ClinicName,
		ContractValidUntil: req.ContractValidUntil,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, clinicsdk.CreateVeterinarianResponse{
		Veterinarian: toSDKVeterinarian(v),
		TempPassword: temp,
	})
}

// HandleUpdate edits profile and registration fields.
//
//	@Summary	Update veterinarian
//	@Tags		Veterinarians
//	@Accept		json
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		id		path		string								true	"Veterinarian id"
//	@Param		request	body		clinicsdk.UpdateVeterinarianRequest	true	"Fields to change"
//	@Success	200		{object}	clinicsdk.Veterinarian
//	@Failure	400		{object}	clinicsdk.APIError
//	@Failure	403		{object}	clinicsdk.APIError
//	@Router		/v1/veterinarians/{id} [patch].
func (h *VeterinariansHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req clinicsdk.UpdateVeterinarianRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	v, err := h.VeterinarianService.Update(r.Context(), actor(r), r.PathValue("id"), domain.VeterinarianEdit{
		Profile: domain.ProfileUpdate{FullName: req.FullName, CPF: req.CPF, Phone: req.Phone},
		Vet: domain.VeterinarianUpdate{
			CRMV:               req.CRMV,
			UF:                 req.UF,
			ClinicName:         req.ClinicName,
			ContractValidUntil: req.ContractValidUntil,
		},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSDKVeterinarian(v))
}

// HandleSetStatus moves a veterinarian between ATIVO, INATIVO and PENDENTE.
//
//	@Summary	Set veterinarian status
//	@Tags		Veterinarians
//	@Accept		json
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Veterinarian id"
//	@Param		request	body		clinicsdk.StatusRequest	true	"New status"
//	@Success	200		{object}	clinicsdk.Veterinarian
//	@Failure	400		{object}	clinicsdk.APIError
//	@Failure	403		{object}	clinicsdk.APIError
//	@Router		/v1/veterinarians/{id}/status [put].
func (h *VeterinariansHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req clinicsdk.StatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	status := domain.VetStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	v, err := h.VeterinarianService.SetStatus(r.Context(), actor(r), r.PathValue("id"), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSDKVeterinarian(v))
}

// HandleResetPassword sends a recovery token to the veterinarian.
//
//	@Summary	Reset veterinarian password
//	@Tags		Veterinarians
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Veterinarian id"
//	@Success	202
//	@Failure	403	{object}	clinicsdk.APIError
//	@Failure	404	{object}	clinicsdk.APIError
//	@Router		/v1/veterinarians/{id}/password-reset [post].
func (h *VeterinariansHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := h.VeterinarianService.ResetPassword(r.Context(), actor(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleCounts returns how many veterinarians are in each status.
//
//	@Summary	Veterinarian counts
//	@Tags		Veterinarians
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Success	200	{object}	clinicsdk.VeterinarianCounts
//	@Failure	403	{object}	clinicsdk.APIError
//	@Router		/v1/veterinarians/counts [get].
func (h *VeterinariansHandler) HandleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.VeterinarianService.Counts(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, clinicsdk.VeterinarianCounts{
		Active:   counts[domain.VetActive],
		Inactive: counts[domain.VetInactive],
		Pending:  counts[domain.VetPending],
	})
}
