package controller_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aussiebroadwan/billybuddy/internal/portal/controller"
	"github.com/aussiebroadwan/billybuddy/internal/portal/nav"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", &nav.ValidationError{Field: "email", Message: "is required"}, "email: is required"},
		{"bad credentials", clinicsdk.ErrInvalidGrant, controller.MsgInvalidCredentials},
		{"wrapped bad credentials", fmt.Errorf("sign in: %w", clinicsdk.ErrInvalidGrant), controller.MsgInvalidCredentials},
		{"backend description", clinicsdk.NewAPIError(409, clinicsdk.ErrorCodeConflict, "user already registered"), "user already registered"},
		{"permission", clinicsdk.ErrPermissionDenied, controller.MsgPermissionDenied},
		{"server error", clinicsdk.ErrServerError, controller.MsgUnexpected},
		{"access denied", controller.ErrAccessDenied, nav.MsgAccessDenied},
		{"stale", controller.ErrStale, controller.MsgStale},
		{"timeout", context.DeadlineExceeded, controller.MsgTimeout},
		{"other", errors.New("boom"), controller.MsgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, controller.UserMessage(tt.err))
		})
	}
}
