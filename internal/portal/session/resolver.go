package session

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultProfileTimeout bounds a profile fetch.
const DefaultProfileTimeout = 5 * time.Second

// Remote is the slice of the clinic backend the store depends on.
type Remote interface {
	// FetchProfile loads the profile of s.UserID using s's tokens.
	FetchProfile(ctx context.Context, s *Session) (*Profile, error)
	// Revoke invalidates s's refresh token server side.
	Revoke(ctx context.Context, s *Session) error
}

// Resolver fetches the profile for a session with a hard timeout. It never
// returns an error: failures are logged and yield a nil profile, which
// callers treat as "still loading" rather than "signed out".
type Resolver struct {
	Remote  Remote
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewResolver returns a Resolver, defaulting the timeout when it is not
// positive.
func NewResolver(remote Remote, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultProfileTimeout
	}
	return &Resolver{Remote: remote, Timeout: timeout, Logger: logger}
}

// Resolve returns the profile of s.UserID, or nil when the fetch fails or
// exceeds the timeout.
func (r *Resolver) Resolve(ctx context.Context, s *Session) *Profile {
	if s == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	type result struct {
		profile *Profile
		err     error
	}
	done := make(chan result, 1)
	go func() {
		p, err := r.Remote.FetchProfile(ctx, s)
		done <- result{p, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			r.Logger.WarnContext(ctx, "profile fetch failed",
				slog.String("user_id", s.UserID),
				slog.String("error", res.err.Error()),
			)
			return nil
		}
		return res.profile
	case <-ctx.Done():
		reason := "timeout"
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = ctx.Err().Error()
		}
		r.Logger.Warn("profile fetch abandoned",
			slog.String("user_id", s.UserID),
			slog.String("reason", reason),
			slog.Duration("timeout", r.Timeout),
		)
		return nil
	}
}
