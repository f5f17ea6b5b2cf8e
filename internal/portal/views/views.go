// Package views implements the data loaders and form actions behind each
// portal screen. Views never change the current screen themselves: an
// action reports the view it wants next and the controller routes that
// request through the Navigator.
package views

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/aussiebroadwan/billybuddy/internal/portal/nav"
	"github.com/aussiebroadwan/billybuddy/internal/portal/session"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
)

var (
	// ErrUnknownAction is returned for action names no view registers.
	ErrUnknownAction = errors.New("views: unknown action")
	// ErrActionUnavailable is returned when an action does not belong to
	// the current view.
	ErrActionUnavailable = errors.New("views: action not available on this view")
	// ErrNoSession is returned by loaders and actions that need a signed-in
	// user.
	ErrNoSession = errors.New("views: not signed in")
)

// API is the backend surface used by the views. *clinicsdk.Session
// satisfies it.
type API interface {
	GetProfile(ctx context.Context, id string) (*clinicsdk.Profile, error)
	UpdateProfile(ctx context.Context, id string, u clinicsdk.ProfileUpdate) (*clinicsdk.Profile, error)
	UpdatePassword(ctx context.Context, password string) error

	ListVeterinarians(ctx context.Context, opts clinicsdk.ListOptions) ([]clinicsdk.Veterinarian, error)
	GetVeterinarian(ctx context.Context, id string) (*clinicsdk.Veterinarian, error)
	CreateVeterinarian(ctx context.Context, req clinicsdk.CreateVeterinarianRequest) (*clinicsdk.CreateVeterinarianResponse, error)
	UpdateVeterinarian(ctx context.Context, id string, req clinicsdk.UpdateVeterinarianRequest) (*clinicsdk.Veterinarian, error)
	SetVeterinarianStatus(ctx context.Context, id, status string) (*clinicsdk.Veterinarian, error)
	ResetVeterinarianPassword(ctx context.Context, id string) error
	VeterinarianCounts(ctx context.Context) (*clinicsdk.VeterinarianCounts, error)

	ListPatients(ctx context.Context, opts clinicsdk.ListOptions) ([]clinicsdk.Patient, error)
	CreatePatient(ctx context.Context, p clinicsdk.Patient) (*clinicsdk.Patient, error)
	ListAppointments(ctx context.Context, opts clinicsdk.ListOptions) ([]clinicsdk.Appointment, error)
	CreateAppointment(ctx context.Context, a clinicsdk.Appointment) (*clinicsdk.Appointment, error)
	ListConsultations(ctx context.Context, opts clinicsdk.ListOptions) ([]clinicsdk.Consultation, error)
	CreateConsultation(ctx context.Context, c clinicsdk.Consultation) (*clinicsdk.Consultation, error)
	ListExams(ctx context.Context, opts clinicsdk.ListOptions) ([]clinicsdk.Exam, error)
	CreateExam(ctx context.Context, e clinicsdk.Exam) (*clinicsdk.Exam, error)
	ListVaccinations(ctx context.Context, opts clinicsdk.ListOptions) ([]clinicsdk.Vaccination, error)
	CreateVaccination(ctx context.Context, v clinicsdk.Vaccination) (*clinicsdk.Vaccination, error)
	ListTutorRequests(ctx context.Context, opts clinicsdk.ListOptions) ([]clinicsdk.TutorRequest, error)
	CreateTutorRequest(ctx context.Context, r clinicsdk.TutorRequest) (*clinicsdk.TutorRequest, error)
	SetTutorRequestStatus(ctx context.Context, id, status string) (*clinicsdk.TutorRequest, error)
}

// Form carries request parameters: query values for loaders, form fields
// for actions.
type Form map[string]string

// Get returns the trimmed value of key.
func (f Form) Get(key string) string {
	return strings.TrimSpace(f[key])
}

// Env is what a loader or action may read. API is nil when signed out.
type Env struct {
	API           API
	Profile       *session.Profile
	SelectedVetID string
	Params        Form
	// BaseURL is the portal's public address, used in outgoing links.
	BaseURL string
	Logger  *slog.Logger
}

func (e Env) self() (string, error) {
	if e.API == nil || e.Profile == nil {
		return "", ErrNoSession
	}
	return e.Profile.ID, nil
}

// Result is what an action asks for next.
type Result struct {
	// Next is the requested view; empty keeps the current one.
	Next nav.ViewID
	// Aux is passed to the Navigator with Next.
	Aux []string
	// Notice is a confirmation shown to the user.
	Notice string
	// Data is returned to the caller as is.
	Data any
	// ProfileChanged asks for the profile to be fetched again.
	ProfileChanged bool
}

// Loader fetches the data a screen shows.
type Loader func(ctx context.Context, env Env) (any, error)

// ActionFunc handles one form submission.
type ActionFunc func(ctx context.Context, env Env, form Form) (Result, error)

// Action is an ActionFunc bound to the view it is offered on.
type Action struct {
	View nav.ViewID
	Do   ActionFunc
}

// Registry maps views to loaders and action names to actions.
type Registry struct {
	loaders map[nav.ViewID]Loader
	actions map[string]Action
}

// Default returns the registry with every portal screen.
func Default() *Registry {
	r := &Registry{
		loaders: make(map[nav.ViewID]Loader),
		actions: make(map[string]Action),
	}
	registerLoaders(r)
	registerActions(r)
	return r
}

func (r *Registry) load(view nav.ViewID, fn Loader) { r.loaders[view] = fn }

func (r *Registry) action(name string, view nav.ViewID, fn ActionFunc) {
	r.actions[name] = Action{View: view, Do: fn}
}

// Load runs the loader of view. Views without data return nil.
func (r *Registry) Load(ctx context.Context, view nav.ViewID, env Env) (any, error) {
	fn, ok := r.loaders[view]
	if !ok {
		return nil, nil
	}
	return fn(ctx, env)
}

// Do runs the named action when it is offered on current.
func (r *Registry) Do(ctx context.Context, current nav.ViewID, name string, env Env, form Form) (Result, error) {
	a, ok := r.actions[name]
	if !ok {
		return Result{}, ErrUnknownAction
	}
	if a.View != current {
		return Result{}, ErrActionUnavailable
	}
	if form == nil {
		form = Form{}
	}
	return a.Do(ctx, env, form)
}

// Actions lists the action names offered on view.
func (r *Registry) Actions(view nav.ViewID) []string {
	var out []string
	for name, a := range r.actions {
		if a.View == view {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

func required(field, value string) error {
	if value == "" {
		return &nav.ValidationError{Field: field, Message: "is required"}
	}
	return nil
}
