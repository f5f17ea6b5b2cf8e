package controller

import (
	"context"
	"errors"
	"net"

	"github.com/aussiebroadwan/billybuddy/internal/portal/nav"
	"github.com/aussiebroadwan/billybuddy/internal/portal/views"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
)

// User-facing messages for errors that are not shown verbatim.
const (
	MsgInvalidCredentials = "invalid email or password"
	MsgPermissionDenied   = "you do not have permission to do that"
	MsgTimeout            = "the clinic did not answer in time, please try again"
	MsgStale              = "the screen changed before the request finished"
	MsgUnexpected         = "something went wrong, please try again"
)

// UserMessage converts err into the text shown to the visitor.
// Authentication and validation errors are shown as the backend or the
// form reports them; permission errors get a generic message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var verr *nav.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	var apiErr *clinicsdk.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case clinicsdk.ErrorCodeInvalidGrant:
			if apiErr.Description == clinicsdk.ErrInvalidGrant.Description {
				return MsgInvalidCredentials
			}
			return apiErr.Description
		case clinicsdk.ErrorCodePermissionDenied:
			return MsgPermissionDenied
		case clinicsdk.ErrorCodeServerError:
			return MsgUnexpected
		}
		if apiErr.Description != "" {
			return apiErr.Description
		}
		return apiErr.Code
	}

	switch {
	case errors.Is(err, ErrAccessDenied):
		return nav.MsgAccessDenied
	case errors.Is(err, ErrStale):
		return MsgStale
	case errors.Is(err, ErrNoMFAChallenge):
		return "sign in again to receive a new challenge"
	case errors.Is(err, nav.ErrUnknownView):
		return "unknown screen"
	case errors.Is(err, nav.ErrWizardBusy):
		return "registration already in progress"
	case errors.Is(err, views.ErrNoSession):
		return "please sign in first"
	case errors.Is(err, views.ErrUnknownAction), errors.Is(err, views.ErrActionUnavailable):
		return "that action is not available here"
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return MsgTimeout
	}
	return MsgUnexpected
}
