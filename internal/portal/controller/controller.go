// Package controller owns one portal visitor's state: the session store,
// the navigator and the registration wizard. It is the only writer of that
// state; HTTP handlers call its event methods and render State.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/billybuddy/internal/portal/nav"
	"github.com/aussiebroadwan/billybuddy/internal/portal/session"
	"github.com/aussiebroadwan/billybuddy/internal/portal/views"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

var (
	// ErrStale is returned when a newer event superseded the one whose
	// response just arrived. The response is dropped.
	ErrStale = errors.New("controller: superseded by a newer request")
	// ErrAccessDenied is returned by a sign-in whose account does not
	// match the chosen login tab. The visitor has been signed out.
	ErrAccessDenied = errors.New("controller: access denied")
	// ErrNoMFAChallenge is returned by VerifyMFA without a pending
	// challenge.
	ErrNoMFAChallenge = errors.New("controller: no pending second factor challenge")
)

// Backend is the clinic backend as seen by one visitor.
// *backend.Conn satisfies it.
type Backend interface {
	session.Remote
	nav.Registrar
	SignIn(ctx context.Context, email, password string) (*session.Session, error)
	VerifyMFA(ctx context.Context, email, mfaToken, code string) (*session.Session, error)
	API(s *session.Session) views.API
	OnRefresh(fn func(*session.Session))
}

// Config holds the per-visitor policy.
type Config struct {
	ForcePasswordChange bool
	ProfileTimeout      time.Duration
	InitTimeout         time.Duration
	// BaseURL is the portal's public address.
	BaseURL string
}

type pendingMFA struct {
	token string
	email string
	tab   role.Role
}

// State is what the visitor sees.
type State struct {
	View          nav.ViewID       `json:"view"`
	SelectedVetID string           `json:"selected_vet_id,omitempty"`
	Message       string           `json:"message,omitempty"`
	SignedIn      bool             `json:"signed_in"`
	Loading       bool             `json:"loading"`
	MFARequired   bool             `json:"mfa_required"`
	Profile       *session.Profile `json:"profile,omitempty"`
	Actions       []string         `json:"actions"`
	Wizard        nav.WizardState  `json:"wizard"`
}

// Screen is the current view together with its loaded data.
type Screen struct {
	View nav.ViewID `json:"view"`
	Data any        `json:"data,omitempty"`
}

// ActionResult is returned by Action.
type ActionResult struct {
	State  State  `json:"state"`
	Notice string `json:"notice,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Controller serialises one visitor's events. Remote calls run outside the
// lock; a generation counter captured before each call detects responses
// overtaken by a later event.
type Controller struct {
	id       string
	backend  Backend
	store    *session.Store
	nav      *nav.Navigator
	wizard   *nav.Wizard
	registry *views.Registry
	baseURL  string
	logger   *slog.Logger

	unsubscribe func()
	initOnce    sync.Once

	mu       sync.Mutex
	gen      uint64
	mfa      *pendingMFA
	notice   string
	lastSeen time.Time
}

// New builds the controller for visitor id. The session store persists
// under the same id.
func New(id string, b Backend, persist session.Persistence, cfg Config, logger *slog.Logger) *Controller {
	logger = logger.With(slog.String("visitor", id))

	store := session.NewStore(session.Options{
		Key:         id,
		Remote:      b,
		Resolver:    session.NewResolver(b, cfg.ProfileTimeout, logger),
		Persistence: persist,
		InitTimeout: cfg.InitTimeout,
		Logger:      logger,
	})

	c := &Controller{
		id:       id,
		backend:  b,
		store:    store,
		nav:      nav.NewNavigator(nav.Gate{ForcePasswordChange: cfg.ForcePasswordChange}, store, logger),
		wizard:   nav.NewWizard(b),
		registry: views.Default(),
		baseURL:  cfg.BaseURL,
		logger:   logger,
		lastSeen: time.Now(),
	}

	c.unsubscribe = store.OnSessionChange(func(*session.Session) {
		c.nav.Reconcile(context.Background())
	})
	b.OnRefresh(func(s *session.Session) {
		store.Set(context.Background(), s)
	})
	return c
}

func (c *Controller) ID() string { return c.id }

// Init restores a persisted session once; later calls wait for the first.
// The view stays at login either way.
func (c *Controller) Init(ctx context.Context) State {
	c.initOnce.Do(func() { c.store.Init(ctx) })
	return c.State()
}

// Close detaches the controller from its store. The persisted session is
// kept for the visitor's next request.
func (c *Controller) Close() {
	c.unsubscribe()
}

// Touch records activity for idle eviction.
func (c *Controller) Touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *Controller) LastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// Store exposes the session store to read session state.
func (c *Controller) Store() *session.Store { return c.store }

// Navigator exposes the view-state machine.
func (c *Controller) Navigator() *nav.Navigator { return c.nav }

// State snapshots what the visitor sees.
func (c *Controller) State() State {
	s, p := c.store.Session(), c.store.Profile()
	view := c.nav.Current()

	c.mu.Lock()
	mfa := c.mfa != nil
	message := c.notice
	c.mu.Unlock()
	if m := c.nav.Message(); m != "" {
		message = m
	}

	return State{
		View:          view,
		SelectedVetID: c.nav.SelectedVetID(),
		Message:       message,
		SignedIn:      s != nil,
		Loading:       s != nil && p == nil,
		MFARequired:   mfa,
		Profile:       p,
		Actions:       c.registry.Actions(view),
		Wizard:        c.wizard.State(),
	}
}

// begin starts a state-changing event and returns its generation.
func (c *Controller) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.notice = ""
	c.lastSeen = time.Now()
	return c.gen
}

// current reports whether no event started after gen.
func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

func (c *Controller) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *Controller) setNotice(n string) {
	c.mu.Lock()
	c.notice = n
	c.mu.Unlock()
}

// Login signs in with email and password through the login tab of r:
// tutor and veterinarian use the login view, admin the admin-login view.
// The visitor lands on the home of the profile's role. A tutor on the
// veterinarian tab or a non-admin on the admin tab is signed out again and
// ErrAccessDenied is returned.
func (c *Controller) Login(ctx context.Context, tab role.Role, email, password string) (State, error) {
	email = strings.TrimSpace(email)
	if !tab.Valid() {
		return c.State(), &nav.ValidationError{Field: "role", Message: "unknown login tab"}
	}
	if email == "" {
		return c.State(), &nav.ValidationError{Field: "email", Message: "is required"}
	}
	if password == "" {
		return c.State(), &nav.ValidationError{Field: "password", Message: "is required"}
	}

	gen := c.begin()
	c.mu.Lock()
	c.mfa = nil
	c.mu.Unlock()

	if c.store.Session() != nil {
		c.store.SignOut(ctx)
	}
	form := nav.Login
	if tab == role.Admin {
		form = nav.AdminLogin
	}
	if _, err := c.nav.NavigateTo(ctx, form); err != nil {
		return c.State(), err
	}

	s, err := c.backend.SignIn(ctx, email, password)
	if !c.current(gen) {
		c.discard(ctx, s)
		return c.State(), ErrStale
	}

	var challenge *clinicsdk.MFARequiredError
	if errors.As(err, &challenge) {
		c.mu.Lock()
		c.mfa = &pendingMFA{token: challenge.MFAToken, email: email, tab: tab}
		c.mu.Unlock()
		return c.State(), nil
	}
	if err != nil {
		return c.State(), err
	}

	return c.complete(ctx, gen, tab, s)
}

// VerifyMFA answers the pending second factor challenge.
func (c *Controller) VerifyMFA(ctx context.Context, code string) (State, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return c.State(), &nav.ValidationError{Field: "code", Message: "is required"}
	}

	c.mu.Lock()
	pending := c.mfa
	c.mu.Unlock()
	if pending == nil {
		return c.State(), ErrNoMFAChallenge
	}

	gen := c.begin()
	s, err := c.backend.VerifyMFA(ctx, pending.email, pending.token, code)
	if !c.current(gen) {
		c.discard(ctx, s)
		return c.State(), ErrStale
	}
	if err != nil {
		if clinicsdk.HasCode(err, clinicsdk.ErrorCodeTooManyRequests) {
			c.mu.Lock()
			c.mfa = nil
			c.mu.Unlock()
		}
		return c.State(), err
	}

	c.mu.Lock()
	c.mfa = nil
	c.mu.Unlock()
	return c.complete(ctx, gen, pending.tab, s)
}

// complete installs a fresh session and routes to the profile's home. A
// profile that cannot be fetched in time is replaced by a provisional tutor
// profile so the sign-in still finishes; the real home is reached once the
// profile resolves.
func (c *Controller) complete(ctx context.Context, gen uint64, tab role.Role, s *session.Session) (State, error) {
	c.store.Set(ctx, s)
	if !c.current(gen) {
		return c.State(), ErrStale
	}

	p := c.store.Profile()
	if p == nil {
		p = c.store.UseProvisionalProfile(role.Tutor)
	}
	if p == nil {
		return c.State(), ErrStale
	}

	home := nav.HomeFor(p.Role)
	if !p.Provisional && wrongTab(tab, p.Role) {
		// Requesting the tab's home lets the gate deny it and sign out.
		home = nav.HomeFor(tab)
	}

	out, err := c.nav.NavigateTo(ctx, home)
	if err != nil {
		return c.State(), err
	}
	if out.Decision.Kind == nav.Deny {
		c.logger.WarnContext(ctx, "sign-in through the wrong login tab",
			slog.String("tab", tab.String()),
			slog.String("role", p.Role.String()),
		)
		return c.State(), ErrAccessDenied
	}

	// Without the forced policy the gate lets flagged users in; first
	// logins still go through the dedicated screen.
	if p := c.store.Profile(); p != nil && p.MustChangePassword && out.View == home {
		if _, err := c.nav.NavigateTo(ctx, nav.ForcePasswordChange); err != nil {
			return c.State(), err
		}
	}
	return c.State(), nil
}

// wrongTab reports whether an account of role r may not sign in through
// tab. Tutors are kept off the veterinarian tab and only admins use the
// admin tab; the tutor tab accepts everyone.
func wrongTab(tab, r role.Role) bool {
	switch tab {
	case role.Veterinarian:
		return r == role.Tutor
	case role.Admin:
		return r != role.Admin
	}
	return false
}

// discard revokes a session that arrived after the visitor moved on.
func (c *Controller) discard(ctx context.Context, s *session.Session) {
	if s == nil {
		return
	}
	if err := c.backend.Revoke(ctx, s); err != nil {
		c.logger.WarnContext(ctx, "failed to revoke superseded session", slog.String("error", err.Error()))
	}
}

// Logout signs out and returns to the login view. It is safe to call
// without a session.
func (c *Controller) Logout(ctx context.Context) State {
	c.begin()
	c.mu.Lock()
	c.mfa = nil
	c.mu.Unlock()

	c.store.SignOut(ctx)
	c.nav.Reset("")
	return c.State()
}

// Navigate requests a transition by view name.
func (c *Controller) Navigate(ctx context.Context, view string, aux ...string) (State, error) {
	id, err := nav.ParseView(view)
	if err != nil {
		return c.State(), err
	}
	c.begin()
	if _, err := c.nav.NavigateTo(ctx, id, aux...); err != nil {
		return c.State(), err
	}
	return c.State(), nil
}

// Refresh retries a missing or provisional profile. It backs the loading
// state: a visitor polling the view eventually gets routed.
func (c *Controller) Refresh(ctx context.Context) State {
	if p := c.store.Profile(); c.store.Session() != nil && (p == nil || p.Provisional) {
		c.store.ResolveProfile(ctx)
	}
	return c.State()
}

func (c *Controller) env(params views.Form) views.Env {
	s := c.store.Session()
	var api views.API
	if s != nil {
		api = c.backend.API(s)
	}
	return views.Env{
		API:           api,
		Profile:       c.store.Profile(),
		SelectedVetID: c.nav.SelectedVetID(),
		Params:        params,
		BaseURL:       c.baseURL,
		Logger:        c.logger,
	}
}

// Screen loads the data of the current view. The result is dropped when
// the view changed while loading.
func (c *Controller) Screen(ctx context.Context, params views.Form) (Screen, error) {
	c.Refresh(ctx)

	view, gen := c.nav.Current(), c.generation()
	if params == nil {
		params = views.Form{}
	}
	data, err := c.registry.Load(ctx, view, c.env(params))
	if !c.current(gen) || c.nav.Current() != view {
		return Screen{View: c.nav.Current()}, ErrStale
	}
	if err != nil {
		return Screen{View: view}, err
	}
	return Screen{View: view, Data: data}, nil
}

// Action runs a form action of the current view and follows the transition
// it asks for.
func (c *Controller) Action(ctx context.Context, name string, form views.Form) (ActionResult, error) {
	view := c.nav.Current()
	gen := c.begin()

	res, err := c.registry.Do(ctx, view, name, c.env(nil), form)
	if !c.current(gen) || c.nav.Current() != view {
		return ActionResult{State: c.State()}, ErrStale
	}
	if err != nil {
		return ActionResult{State: c.State()}, err
	}

	if res.ProfileChanged {
		c.store.ReloadProfile(ctx)
	}
	if res.Next != "" {
		if _, err := c.nav.NavigateTo(ctx, res.Next, res.Aux...); err != nil {
			return ActionResult{State: c.State()}, err
		}
	}
	c.setNotice(res.Notice)

	return ActionResult{State: c.State(), Notice: res.Notice, Data: res.Data}, nil
}

// WizardOpen shows the registration wizard over the current view.
func (c *Controller) WizardOpen() nav.WizardState {
	c.wizard.Open()
	return c.wizard.State()
}

func (c *Controller) WizardClose() nav.WizardState {
	c.wizard.Close()
	return c.wizard.State()
}

func (c *Controller) WizardNext(p nav.PersonalInfo) (nav.WizardState, error) {
	err := c.wizard.Next(p)
	return c.wizard.State(), err
}

func (c *Controller) WizardBack() nav.WizardState {
	c.wizard.Back()
	return c.wizard.State()
}

// WizardSubmit registers the tutor. The current view does not change: the
// new tutor signs in explicitly afterwards.
func (c *Controller) WizardSubmit(ctx context.Context, creds nav.Credentials) (nav.WizardState, error) {
	err := c.wizard.Submit(ctx, creds)
	if err == nil {
		c.setNotice("account created, you can now sign in")
	}
	return c.wizard.State(), err
}

func (c *Controller) WizardState() nav.WizardState {
	return c.wizard.State()
}
