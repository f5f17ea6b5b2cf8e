package nav

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/billybuddy/internal/portal/session"
)

// SessionSource is what the Navigator reads from and signs out through.
// *session.Store satisfies it.
type SessionSource interface {
	Session() *session.Session
	Profile() *session.Profile
	SignOut(ctx context.Context)
}

// Outcome reports where a navigation request ended.
type Outcome struct {
	View     ViewID
	Decision Decision
	Message  string
}

// Navigator is the only way the current view changes. Every request is
// judged by the Gate first.
type Navigator struct {
	gate     Gate
	sessions SessionSource
	logger   *slog.Logger

	mu            sync.RWMutex
	current       ViewID
	selectedVetID string
	message       string
}

// NewNavigator starts at the login view.
func NewNavigator(gate Gate, sessions SessionSource, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{
		gate:     gate,
		sessions: sessions,
		logger:   logger,
		current:  Login,
	}
}

func (n *Navigator) Current() ViewID {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// SelectedVetID is the veterinarian picked by the last drill-down.
func (n *Navigator) SelectedVetID() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.selectedVetID
}

// Message is the notice left by the last transition, such as an access
// denial.
func (n *Navigator) Message() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.message
}

// NavigateTo requests a transition to view. The first aux value, when
// given, becomes the selected veterinarian id. A role-home mismatch signs
// the visitor out and lands on login, or on admin-login when the request
// came from there.
func (n *Navigator) NavigateTo(ctx context.Context, view ViewID, aux ...string) (Outcome, error) {
	if !view.Valid() {
		return n.outcome(Decision{Kind: Deny, Reason: ErrUnknownView.Error()}), ErrUnknownView
	}

	origin := n.Current()
	d := n.gate.Decide(n.sessions.Session(), n.sessions.Profile(), view)

	switch d.Kind {
	case Allow:
		n.set(view, aux, "")
	case Redirect:
		n.set(d.Target, nil, "")
	case Loading:
		// Stay put until the profile resolves.
	case Deny:
		n.sessions.SignOut(ctx)
		landing := Login
		if origin == AdminLogin {
			landing = AdminLogin
		}
		n.clearSelection()
		n.set(landing, nil, d.Reason)
		n.logger.WarnContext(ctx, "navigation denied",
			slog.String("requested", view.String()),
			slog.String("landing", landing.String()),
		)
	}

	n.logger.DebugContext(ctx, "navigate",
		slog.String("requested", view.String()),
		slog.String("decision", d.Kind.String()),
		slog.String("view", n.Current().String()),
	)
	return n.outcome(d), nil
}

// Reconcile re-judges the current view after the session or profile
// changed. Unlike NavigateTo, a role-home mismatch moves the visitor to
// their own home instead of signing them out.
func (n *Navigator) Reconcile(ctx context.Context) Outcome {
	cur := n.Current()
	s, p := n.sessions.Session(), n.sessions.Profile()
	d := n.gate.Decide(s, p, cur)

	switch d.Kind {
	case Redirect:
		if d.Target == Login {
			n.clearSelection()
		}
		n.set(d.Target, nil, n.Message())
	case Deny:
		home := HomeFor(p.Role)
		n.set(home, nil, "")
		d = Decision{Kind: Redirect, Target: home}
	}

	if cur != n.Current() {
		n.logger.DebugContext(ctx, "reconcile",
			slog.String("from", cur.String()),
			slog.String("to", n.Current().String()),
		)
	}
	return n.outcome(d)
}

// Reset returns to the login view and forgets the selection.
func (n *Navigator) Reset(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = Login
	n.selectedVetID = ""
	n.message = message
}

func (n *Navigator) set(view ViewID, aux []string, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = view
	if len(aux) > 0 {
		n.selectedVetID = aux[0]
	}
	n.message = message
}

func (n *Navigator) clearSelection() {
	n.mu.Lock()
	n.selectedVetID = ""
	n.mu.Unlock()
}

func (n *Navigator) outcome(d Decision) Outcome {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return Outcome{View: n.current, Decision: d, Message: n.message}
}
