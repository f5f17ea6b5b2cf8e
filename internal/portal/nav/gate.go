package nav

import (
	"github.com/aussiebroadwan/billybuddy/internal/portal/session"
)

// DecisionKind is the verdict of the Role Gate.
type DecisionKind int

const (
	Allow DecisionKind = iota
	Redirect
	Loading
	Deny
)

func (k DecisionKind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Loading:
		return "loading"
	case Deny:
		return "deny"
	}
	return "unknown"
}

// MsgAccessDenied is shown after a role-home mismatch.
const MsgAccessDenied = "access denied"

// Decision says what happens to a requested transition. Target is set for
// Redirect, Reason for Deny.
type Decision struct {
	Kind   DecisionKind
	Target ViewID
	Reason string
}

// Gate decides which views a visitor may reach. It has no state besides its
// policy switch and never performs I/O.
type Gate struct {
	// ForcePasswordChange sends users flagged with must_change_password to
	// the change-password view until they comply.
	ForcePasswordChange bool
}

// Decide evaluates the request for view requested given the current session
// and profile.
func (g Gate) Decide(s *session.Session, p *session.Profile, requested ViewID) Decision {
	if s == nil {
		if public(requested) {
			return Decision{Kind: Allow}
		}
		return Decision{Kind: Redirect, Target: Login}
	}

	if p == nil {
		return Decision{Kind: Loading}
	}

	if g.ForcePasswordChange && p.MustChangePassword && requested != ChangePassword {
		return Decision{Kind: Redirect, Target: ChangePassword}
	}

	if owner, ok := homeOwner(requested); ok && owner != p.Role {
		return Decision{Kind: Deny, Reason: MsgAccessDenied}
	}

	return Decision{Kind: Allow}
}
