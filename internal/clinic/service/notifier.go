package service

import (
	"context"
	"log/slog"
)

// Notifier delivers account messages to users.
type Notifier interface {
	PasswordReset(ctx context.Context, email, token string) error
}

// LogNotifier writes messages to the log instead of delivering them. It is
// the default when no delivery channel is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) PasswordReset(ctx context.Context, email, token string) error {
	n.Logger.InfoContext(ctx, "password reset issued",
		slog.String("email", email),
		slog.String("reset_token", token),
	)
	return nil
}
