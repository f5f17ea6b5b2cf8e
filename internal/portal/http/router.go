// Package http exposes one visitor's portal controller over JSON. Every
// request is routed to the controller named by the bb_visitor cookie.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/billybuddy/internal/portal/controller"
	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	pool         *controller.Pool
	secureCookie bool
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
}

// NewRouter builds the portal router. secureCookie marks the visitor
// cookie Secure and should be set whenever the portal is served over TLS.
func NewRouter(pool *controller.Pool, secureCookie bool, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		pool:         pool,
		secureCookie: secureCookie,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger, "/livez"),
	}
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// visitor registers a route served by the visitor's controller.
func (r *Router) visitor(pattern string, h http.HandlerFunc, m ...httpx.Middleware) {
	m = append([]httpx.Middleware{r.visitorMiddleware}, m...)
	r.Mux.Handle(pattern, httpx.Chain(h, m...))
}

func (r *Router) ApplyRoutes() {
	h := &Handler{}

	signIn := httpx.RateLimitBy(httpx.StrictLimit, visitorKey)
	events := httpx.RateLimitBy(httpx.LenientLimit, visitorKey)

	r.visitor("GET /v1/view", h.HandleView, events)
	r.visitor("POST /v1/navigate", h.HandleNavigate, events)
	r.visitor("GET /v1/screen", h.HandleScreen, events)
	r.visitor("POST /v1/actions/{action}", h.HandleAction, httpx.RateLimitBy(httpx.ModerateLimit, visitorKey))

	r.visitor("POST /v1/login", h.HandleLogin, signIn)
	r.visitor("POST /v1/admin-login", h.HandleAdminLogin, signIn)
	r.visitor("POST /v1/login/mfa", h.HandleVerifyMFA, signIn)
	r.visitor("POST /v1/logout", h.HandleLogout)

	r.visitor("GET /v1/wizard", h.HandleWizardState, events)
	r.visitor("POST /v1/wizard/open", h.HandleWizardOpen, events)
	r.visitor("POST /v1/wizard/close", h.HandleWizardClose, events)
	r.visitor("POST /v1/wizard/next", h.HandleWizardNext, events)
	r.visitor("POST /v1/wizard/back", h.HandleWizardBack, events)
	r.visitor("POST /v1/wizard/submit", h.HandleWizardSubmit, signIn)

	r.Mux.HandleFunc("GET /livez", r.handleLivez)
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Visitors  int    `json:"visitors"`
	Timestamp string `json:"timestamp"`
}

func (r *Router) handleLivez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   r.buildVersion,
		Uptime:    time.Since(r.startTime).Round(time.Second).String(),
		Visitors:  r.pool.Len(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
