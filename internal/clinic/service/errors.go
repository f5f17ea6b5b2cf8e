package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrInvalidGrant       = errors.New("invalid_grant")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
	ErrInvalidResetToken  = errors.New("invalid_reset_token")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrValidation         = errors.New("validation failed")
)

// ValidationError describes a rejected input field. It matches ErrValidation
// with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// deny logs why a row policy rejected the actor and returns the generic
// ErrPermissionDenied.
func deny(ctx context.Context, a Actor, action string, attrs ...any) error {
	args := append([]any{
		slog.String("actor_id", a.UserID),
		slog.String("actor_role", a.Role.String()),
		slog.String("action", action),
	}, attrs...)
	slogx.FromContext(ctx).Warn("row policy denied request", args...)
	return ErrPermissionDenied
}
