package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/service"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/store"
	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
	"github.com/aussiebroadwan/billybuddy/pkg/jwtx"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"

	_ "github.com/aussiebroadwan/billybuddy/api/clinic" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:generate swag init -g router.go -o ../../../api/clinic --parseDependency

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	apiKey       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store               store.Store
	AuthService         *service.AuthService
	MFAService          *service.MFAService
	ProfileService      *service.ProfileService
	VeterinarianService *service.VeterinarianService
	RecordsService      *service.RecordsService
	BootstrapService    *service.BootstrapService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	apiKey, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		apiKey:       apiKey,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger, "/livez", "/readyz"),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMFA()
	r.registerProfiles()
	r.registerVeterinarians()
	r.registerRecords()
	r.registerSystem()
	r.registerBootstrap()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			BillyBuddy Clinic API
//	@version		0.1.0
//	@description	Auth and data capabilities backing the BillyBuddy portal.
//	@description
//	@description				Every /v1 call must carry the project key in the apikey header. Data endpoints also require a bearer access token.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/billybuddy
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
//
//	@securityDefinitions.apikey	APIKey
//	@in							header
//	@name						apikey
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// public registers a /v1 route that only needs the project key.
func (r *Router) public(pattern string, h http.Handler, limit httpx.RateLimit) {
	r.Mux.Handle(pattern, httpx.Chain(h,
		httpx.RequireAPIKey(r.apiKey),
		httpx.RateLimitByIP(limit),
	))
}

// secured registers a /v1 route that needs the project key and a bearer
// token, optionally restricted to roles.
func (r *Router) secured(pattern string, h http.HandlerFunc, limit httpx.RateLimit, roles ...role.Role) {
	mw := []httpx.Middleware{
		httpx.RequireAPIKey(r.apiKey),
		httpx.AuthnMiddleware(r.verifier),
	}
	if len(roles) > 0 {
		mw = append(mw, httpx.RequireAnyRole(roles...))
	}
	mw = append(mw, httpx.RateLimitByUser(limit))
	r.Mux.Handle(pattern, httpx.Chain(h, mw...))
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints are limited by IP; sign-in additionally by email.
	r.Mux.Handle("POST /v1/auth/token", httpx.Chain(http.HandlerFunc(h.HandleToken),
		httpx.RequireAPIKey(r.apiKey),
		httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "email"),
	))
	r.public("POST /v1/auth/signup", http.HandlerFunc(h.HandleSignUp), httpx.StrictLimit)
	r.public("POST /v1/auth/revoke", http.HandlerFunc(h.HandleRevoke), httpx.ModerateLimit)
	r.public("POST /v1/auth/recover", http.HandlerFunc(h.HandleRecover), httpx.StrictLimit)
	r.public("POST /v1/auth/recover/confirm", http.HandlerFunc(h.HandleRecoverConfirm), httpx.StrictLimit)

	r.secured("GET /v1/auth/user", h.HandleGetUser, httpx.LenientLimit)
	r.secured("PUT /v1/auth/user", h.HandleUpdateUser, httpx.StrictLimit)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.secured("POST /v1/auth/mfa/enroll", h.HandleEnroll, httpx.ModerateLimit)
	r.secured("POST /v1/auth/mfa/verify", h.HandleVerify, httpx.StrictLimit)
	r.secured("POST /v1/auth/mfa/remove", h.HandleRemove, httpx.StrictLimit)
}

func (r *Router) registerProfiles() {
	h := &ProfilesHandler{ProfileService: r.ProfileService}

	r.secured("GET /v1/profiles", h.HandleList, httpx.LenientLimit)
	r.secured("POST /v1/profiles", h.HandleCreate, httpx.ModerateLimit)
	r.secured("GET /v1/profiles/{id}", h.HandleGet, httpx.LenientLimit)
	r.secured("PATCH /v1/profiles/{id}", h.HandleUpdate, httpx.ModerateLimit)
}

func (r *Router) registerVeterinarians() {
	h := &VeterinariansHandler{VeterinarianService: r.VeterinarianService}

	r.secured("GET /v1/veterinarians", h.HandleList, httpx.LenientLimit)
	r.secured("GET /v1/veterinarians/{id}", h.HandleGet, httpx.LenientLimit)
	r.secured("PATCH /v1/veterinarians/{id}", h.HandleUpdate, httpx.ModerateLimit, role.Admin, role.Veterinarian)

	// Administration endpoints
	r.secured("GET /v1/veterinarians/counts", h.HandleCounts, httpx.LenientLimit, role.Admin)
	r.secured("POST /v1/veterinarians", h.HandleCreate, httpx.ModerateLimit, role.Admin)
	r.secured("PUT /v1/veterinarians/{id}/status", h.HandleSetStatus, httpx.ModerateLimit, role.Admin)
	r.secured("POST /v1/veterinarians/{id}/password-reset", h.HandleResetPassword, httpx.StrictLimit, role.Admin)
}

func (r *Router) registerRecords() {
	h := &RecordsHandler{RecordsService: r.RecordsService}

	r.secured("GET /v1/patients", h.HandleListPatients, httpx.LenientLimit)
	r.secured("POST /v1/patients", h.HandleCreatePatient, httpx.ModerateLimit)
	r.secured("GET /v1/appointments", h.HandleListAppointments, httpx.LenientLimit)
	r.secured("POST /v1/appointments", h.HandleCreateAppointment, httpx.ModerateLimit)
	r.secured("GET /v1/consultations", h.HandleListConsultations, httpx.LenientLimit)
	r.secured("POST /v1/consultations", h.HandleCreateConsultation, httpx.ModerateLimit)
	r.secured("GET /v1/exams", h.HandleListExams, httpx.LenientLimit)
	r.secured("POST /v1/exams", h.HandleCreateExam, httpx.ModerateLimit)
	r.secured("GET /v1/vaccinations", h.HandleListVaccinations, httpx.LenientLimit)
	r.secured("POST /v1/vaccinations", h.HandleCreateVaccination, httpx.ModerateLimit)
	r.secured("GET /v1/tutor-requests", h.HandleListTutorRequests, httpx.LenientLimit)
	r.secured("POST /v1/tutor-requests", h.HandleCreateTutorRequest, httpx.ModerateLimit)
	r.secured("PUT /v1/tutor-requests/{id}/status", h.HandleSetTutorRequestStatus, httpx.ModerateLimit)
}

func (r *Router) registerSystem() {
	// Health probes skip the api key so orchestrators can poll them.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerBootstrap() {
	h := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.public("POST /v1/bootstrap", h, httpx.StrictLimit)
}
