// Package nav holds the portal's view-state machine: the closed set of view
// identifiers, the Role Gate deciding which transitions are legal, the
// Navigator applying them and the two-step registration Wizard.
package nav

import (
	"errors"

	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

// ViewID identifies one screen of the portal.
type ViewID string

const (
	Login               ViewID = "login"
	TutorDashboard      ViewID = "tutor-dashboard"
	VetDashboard        ViewID = "vet-dashboard"
	Vaccination         ViewID = "vaccination"
	Scheduling          ViewID = "scheduling"
	Registration        ViewID = "registration"
	DoseRegistration    ViewID = "dose-registration"
	ConsultationDetails ViewID = "consultation-details"
	TutorProfile        ViewID = "tutor-profile"
	Exams               ViewID = "exams"
	AdminLogin          ViewID = "admin-login"
	PatientRegistration ViewID = "patient-registration"
	ForcePasswordChange ViewID = "force-password-change"
	Admin               ViewID = "admin"
	VetValidation       ViewID = "vet-validation"
	EditVet             ViewID = "edit-vet"
	EditVetSelf         ViewID = "edit-vet-self"
	VetProfileView      ViewID = "vet-profile-view"
	VetSettings         ViewID = "vet-settings"
	ChangePassword      ViewID = "change-password"
)

// ErrUnknownView is returned for identifiers outside the view set. No
// transition happens.
var ErrUnknownView = errors.New("nav: unknown view")

var allViews = []ViewID{
	Login, TutorDashboard, VetDashboard, Vaccination, Scheduling,
	Registration, DoseRegistration, ConsultationDetails, TutorProfile, Exams,
	AdminLogin, PatientRegistration, ForcePasswordChange, Admin, VetValidation,
	EditVet, EditVetSelf, VetProfileView, VetSettings, ChangePassword,
}

// Views lists every view in a stable order.
func Views() []ViewID {
	out := make([]ViewID, len(allViews))
	copy(out, allViews)
	return out
}

// Valid reports whether v is a known view.
func (v ViewID) Valid() bool {
	for _, known := range allViews {
		if v == known {
			return true
		}
	}
	return false
}

func (v ViewID) String() string { return string(v) }

// ParseView converts s into a ViewID.
func ParseView(s string) (ViewID, error) {
	v := ViewID(s)
	if !v.Valid() {
		return "", ErrUnknownView
	}
	return v, nil
}

// HomeFor returns the dashboard a role lands on after sign-in.
func HomeFor(r role.Role) ViewID {
	switch r {
	case role.Veterinarian:
		return VetDashboard
	case role.Admin:
		return Admin
	default:
		return TutorDashboard
	}
}

// homeOwner reports which role owns v when v is a role home.
func homeOwner(v ViewID) (role.Role, bool) {
	switch v {
	case TutorDashboard:
		return role.Tutor, true
	case VetDashboard:
		return role.Veterinarian, true
	case Admin:
		return role.Admin, true
	}
	return "", false
}

// public reports whether v is reachable without a session.
func public(v ViewID) bool {
	return v == Login || v == AdminLogin || v == Registration
}
