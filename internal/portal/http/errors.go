package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/billybuddy/internal/portal/controller"
	"github.com/aussiebroadwan/billybuddy/internal/portal/nav"
	"github.com/aussiebroadwan/billybuddy/internal/portal/views"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

// Portal error codes not shared with the clinic API.
const (
	ErrorCodeStale        = "stale"
	ErrorCodeAccessDenied = "access_denied"
	ErrorCodeTimeout      = "timeout"
)

// errorResponse carries the visitor state next to the error so the page
// can re-render after a failed event.
type errorResponse struct {
	httpx.ErrorBody
	State *controller.State `json:"state,omitempty"`
}

// writeError maps controller, navigation and backend errors to a status and
// the message shown to the visitor.
func writeError(w http.ResponseWriter, r *http.Request, err error, state *controller.State) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
	}
	httpx.WriteJSON(w, status, errorResponse{
		ErrorBody: httpx.ErrorBody{Error: code, ErrorDescription: controller.UserMessage(err)},
		State:     state,
	})
}

func classify(err error) (int, string) {
	var verr *nav.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, clinicsdk.ErrorCodeValidation
	}

	switch {
	case errors.Is(err, controller.ErrStale):
		return http.StatusConflict, ErrorCodeStale
	case errors.Is(err, controller.ErrAccessDenied):
		return http.StatusForbidden, ErrorCodeAccessDenied
	case errors.Is(err, controller.ErrNoMFAChallenge):
		return http.StatusBadRequest, clinicsdk.ErrorCodeInvalidRequest
	case errors.Is(err, nav.ErrUnknownView), errors.Is(err, views.ErrUnknownAction):
		return http.StatusNotFound, clinicsdk.ErrorCodeNotFound
	case errors.Is(err, views.ErrActionUnavailable), errors.Is(err, nav.ErrWizardBusy):
		return http.StatusConflict, clinicsdk.ErrorCodeConflict
	case errors.Is(err, views.ErrNoSession):
		return http.StatusUnauthorized, clinicsdk.ErrorCodeInvalidToken
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorCodeTimeout
	}

	var apiErr *clinicsdk.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return status, apiErr.Code
	}
	return http.StatusInternalServerError, clinicsdk.ErrorCodeServerError
}

// badRequest reports a malformed body.
func badRequest(w http.ResponseWriter, desc string) {
	httpx.WriteError(w, http.StatusBadRequest, clinicsdk.ErrorCodeInvalidRequest, desc)
}
