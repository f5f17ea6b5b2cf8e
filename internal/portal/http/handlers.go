package http

import (
	"net/http"

	"github.com/aussiebroadwan/billybuddy/internal/portal/nav"
	"github.com/aussiebroadwan/billybuddy/internal/portal/views"
	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

// Handler serves the visitor events. The controller comes from the request
// context.
type Handler struct{}

type loginRequest struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type mfaRequest struct {
	Code string `json:"code"`
}

type navigateRequest struct {
	View  string `json:"view"`
	VetID string `json:"vet_id,omitempty"`
}

type screenResponse struct {
	View nav.ViewID `json:"view"`
	Data any        `json:"data,omitempty"`
}

// HandleView returns the visitor state, retrying a missing profile first.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, ctrl(r).Refresh(r.Context()))
}

func (h *Handler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	var aux []string
	if req.VetID != "" {
		aux = append(aux, req.VetID)
	}
	state, err := ctrl(r).Navigate(r.Context(), req.View, aux...)
	if err != nil {
		writeError(w, r, err, &state)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, state)
}

// HandleScreen loads the current view. Query parameters are passed to the
// loader, e.g. pet_id for the exams view.
func (h *Handler) HandleScreen(w http.ResponseWriter, r *http.Request) {
	c := ctrl(r)

	params := views.Form{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	screen, err := c.Screen(r.Context(), params)
	if err != nil {
		state := c.State()
		writeError(w, r, err, &state)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, screenResponse{View: screen.View, Data: screen.Data})
}

func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	form := views.Form{}
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &form); err != nil {
			badRequest(w, err.Error())
			return
		}
	}

	res, err := ctrl(r).Action(r.Context(), r.PathValue("action"), form)
	if err != nil {
		writeError(w, r, err, &res.State)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// HandleLogin signs in through the tutor or veterinarian tab.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	tab, err := role.Parse(req.Role)
	if err != nil || tab == role.Admin {
		badRequest(w, "role must be tutor or veterinarian")
		return
	}
	h.login(w, r, tab, req)
}

// HandleAdminLogin signs in through the administrator screen.
func (h *Handler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	h.login(w, r, role.Admin, req)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, tab role.Role, req loginRequest) {
	state, err := ctrl(r).Login(r.Context(), tab, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err, &state)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) HandleVerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req mfaRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	state, err := ctrl(r).VerifyMFA(r.Context(), req.Code)
	if err != nil {
		writeError(w, r, err, &state)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, ctrl(r).Logout(r.Context()))
}

func (h *Handler) HandleWizardState(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, ctrl(r).WizardState())
}

func (h *Handler) HandleWizardOpen(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, ctrl(r).WizardOpen())
}

func (h *Handler) HandleWizardClose(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, ctrl(r).WizardClose())
}

func (h *Handler) HandleWizardBack(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, ctrl(r).WizardBack())
}

func (h *Handler) HandleWizardNext(w http.ResponseWriter, r *http.Request) {
	var req nav.PersonalInfo
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	ws, err := ctrl(r).WizardNext(req)
	if err != nil {
		state := ctrl(r).State()
		writeError(w, r, err, &state)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ws)
}

// HandleWizardSubmit registers the tutor. The visitor stays signed out.
func (h *Handler) HandleWizardSubmit(w http.ResponseWriter, r *http.Request) {
	var req nav.Credentials
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	c := ctrl(r)
	if _, err := c.WizardSubmit(r.Context(), req); err != nil {
		state := c.State()
		writeError(w, r, err, &state)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c.State())
}
