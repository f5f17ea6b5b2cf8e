package nav

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
)

// MinPasswordLength is the shortest password the wizard accepts.
const MinPasswordLength = 6

// ErrWizardBusy is returned when Submit is called while a submission is in
// flight.
var ErrWizardBusy = errors.New("nav: registration already in progress")

// ValidationError reports a form field rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// WizardStep is the current step of the registration wizard.
type WizardStep int

const (
	StepPersonalInfo WizardStep = iota + 1
	StepCredentials
)

func (s WizardStep) String() string {
	switch s {
	case StepPersonalInfo:
		return "personal-info"
	case StepCredentials:
		return "credentials"
	}
	return "unknown"
}

// PersonalInfo is collected on the first step.
type PersonalInfo struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	CPF       string `json:"cpf"`
	BirthDate string `json:"birth_date"`
	Phone     string `json:"phone"`
}

// Credentials are collected on the second step.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm_password"`
}

// Registrar creates a tutor account. It must not leave the caller signed
// in.
type Registrar interface {
	Register(ctx context.Context, req clinicsdk.SignUpRequest) error
}

// WizardState is a snapshot of the wizard for rendering.
type WizardState struct {
	Open     bool         `json:"open"`
	Step     string       `json:"step"`
	Personal PersonalInfo `json:"personal"`
	Busy     bool         `json:"busy"`
	Error    string       `json:"error,omitempty"`
}

// Wizard is the two-step tutor registration flow. It never touches the
// Navigator: a completed registration leaves the current view unchanged.
type Wizard struct {
	registrar Registrar

	mu       sync.Mutex
	open     bool
	step     WizardStep
	personal PersonalInfo
	busy     bool
	lastErr  string
}

func NewWizard(registrar Registrar) *Wizard {
	return &Wizard{registrar: registrar, step: StepPersonalInfo}
}

func (w *Wizard) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = true
}

// Close hides the wizard; entered values are kept for the next Open.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = false
}

func (w *Wizard) Step() WizardStep {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) State() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WizardState{
		Open:     w.open,
		Step:     w.step.String(),
		Personal: w.personal,
		Busy:     w.busy,
		Error:    w.lastErr,
	}
}

// Next validates the personal info and moves to the credentials step.
func (w *Wizard) Next(p PersonalInfo) error {
	p = PersonalInfo{
		Name:      strings.TrimSpace(p.Name),
		Surname:   strings.TrimSpace(p.Surname),
		CPF:       strings.TrimSpace(p.CPF),
		BirthDate: strings.TrimSpace(p.BirthDate),
		Phone:     strings.TrimSpace(p.Phone),
	}
	if err := validatePersonal(p); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.personal = p
	w.step = StepCredentials
	w.lastErr = ""
	return nil
}

// Back returns to the personal info step keeping what was entered.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = StepPersonalInfo
	w.lastErr = ""
}

// Submit validates the credentials and issues exactly one sign-up request.
// On success the wizard resets and closes; on failure it stays on the
// credentials step and returns the backend error unchanged.
func (w *Wizard) Submit(ctx context.Context, c Credentials) error {
	c.Email = strings.TrimSpace(c.Email)
	if err := validateCredentials(c); err != nil {
		return err
	}

	w.mu.Lock()
	if w.step != StepCredentials {
		w.mu.Unlock()
		return &ValidationError{Field: "step", Message: "personal information is incomplete"}
	}
	if w.busy {
		w.mu.Unlock()
		return ErrWizardBusy
	}
	w.busy = true
	personal := w.personal
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
	}()

	err := w.registrar.Register(ctx, clinicsdk.SignUpRequest{
		Email:    c.Email,
		Password: c.Password,
		Data: clinicsdk.SignUpMetadata{
			FullName:  strings.TrimSpace(personal.Name + " " + personal.Surname),
			CPF:       personal.CPF,
			Phone:     personal.Phone,
			BirthDate: personal.BirthDate,
		},
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.lastErr = err.Error()
		return err
	}
	w.open = false
	w.step = StepPersonalInfo
	w.personal = PersonalInfo{}
	w.lastErr = ""
	return nil
}

func validatePersonal(p PersonalInfo) error {
	switch {
	case p.Name == "":
		return &ValidationError{Field: "name", Message: "is required"}
	case p.Surname == "":
		return &ValidationError{Field: "surname", Message: "is required"}
	case p.CPF == "":
		return &ValidationError{Field: "cpf", Message: "is required"}
	case p.BirthDate == "":
		return &ValidationError{Field: "birth_date", Message: "is required"}
	case p.Phone == "":
		return &ValidationError{Field: "phone", Message: "is required"}
	}
	return nil
}

func validateCredentials(c Credentials) error {
	switch {
	case c.Email == "":
		return &ValidationError{Field: "email", Message: "is required"}
	case c.Password == "":
		return &ValidationError{Field: "password", Message: "is required"}
	case c.Confirm == "":
		return &ValidationError{Field: "confirm_password", Message: "is required"}
	case c.Password != c.Confirm:
		return &ValidationError{Field: "confirm_password", Message: "passwords do not match"}
	case len(c.Password) < MinPasswordLength:
		return &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", MinPasswordLength)}
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return &ValidationError{Field: "email", Message: "is not a valid address"}
	}
	return nil
}
