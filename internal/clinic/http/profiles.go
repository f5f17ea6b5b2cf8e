package http

import (
	"net/http"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/service"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
)

type ProfilesHandler struct {
	ProfileService *service.ProfileService
}

// HandleList lists profiles, optionally by role.
//
//	@Summary	List profiles
//	@Tags		Profiles
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		role	query		string	false	"tutor, veterinarian or admin"
//	@Param		limit	query		int		false	"Maximum rows"
//	@Success	200		{array}		clinicsdk.Profile
//	@Failure	403		{object}	clinicsdk.APIError
//	@Router		/v1/profiles [get].
func (h *ProfilesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	rl, ok := parseRole(r.URL.Query().Get("role"))
	if !ok {
		badRequest(w, "unknown role")
		return
	}
	list, err := h.ProfileService.List(r.Context(), actor(r), rl, httpx.QueryInt(r, "limit", 0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapSlice(list, toSDKProfile))
}

// HandleCreate inserts a profile for an existing user.
//
//	@Summary	Create profile
//	@Tags		Profiles
//	@Accept		json
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		request	body		clinicsdk.Profile	true	"Profile; id defaults to the caller"
//	@Success	201		{object}	clinicsdk.Profile
//	@Failure	403		{object}	clinicsdk.APIError
//	@Failure	409		{object}	clinicsdk.APIError	"Profile already exists"
//	@Router		/v1/profiles [post].
func (h *ProfilesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req clinicsdk.Profile
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := h.ProfileService.Create(r.Context(), actor(r), fromSDKProfile(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toSDKProfile(p))
}

// HandleGet returns one profile.
//
//	@Summary	Get profile
//	@Tags		Profiles
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Profile id"
//	@Success	200	{object}	clinicsdk.Profile
//	@Failure	403	{object}	clinicsdk.APIError
//	@Failure	404	{object}	clinicsdk.APIError
//	@Router		/v1/profiles/{id} [get].
func (h *ProfilesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProfileService.Get(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSDKProfile(p))
}

// HandleUpdate applies a partial update.
//
//	@Summary	Update profile
//	@Tags		Profiles
//	@Accept		json
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Profile id"
//	@Param		request	body		clinicsdk.ProfileUpdate	true	"Fields to change"
//	@Success	200		{object}	clinicsdk.Profile
//	@Failure	400		{object}	clinicsdk.APIError
//	@Failure	403		{object}	clinicsdk.APIError
//	@Router		/v1/profiles/{id} [patch].
func (h *ProfilesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req clinicsdk.ProfileUpdate
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := h.ProfileService.Update(r.Context(), actor(r), r.PathValue("id"), fromSDKProfileUpdate(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSDKProfile(p))
}
