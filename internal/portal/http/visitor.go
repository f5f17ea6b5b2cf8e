package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/billybuddy/internal/portal/controller"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

// VisitorCookie identifies a browser across requests.
const VisitorCookie = "bb_visitor"

type ctxKey string

const ctxKeyController ctxKey = "controller"

// visitorMiddleware resolves the visitor's controller from the cookie,
// issuing a new id when the cookie is missing or malformed. Backend calls
// made for the request carry the visitor's address.
func (r *Router) visitorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := visitorID(req)
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     VisitorCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   r.secureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}

		c := r.pool.Get(req.Context(), id)
		ctx := context.WithValue(req.Context(), ctxKeyController, c)
		ctx = clinicsdk.WithForwardedFor(ctx, httpx.ClientIP(req))
		ctx = slogx.WithContext(ctx, slogx.FromContext(ctx).With("visitor", id))
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func visitorID(req *http.Request) string {
	cookie, err := req.Cookie(VisitorCookie)
	if err != nil {
		return ""
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return ""
	}
	return id.String()
}

// visitorKey rate limits by visitor, falling back to the client address for
// requests that have not been through visitorMiddleware yet.
func visitorKey(req *http.Request) string {
	if c, ok := req.Context().Value(ctxKeyController).(*controller.Controller); ok {
		return c.ID()
	}
	return httpx.ClientIP(req)
}

func ctrl(req *http.Request) *controller.Controller {
	return req.Context().Value(ctxKeyController).(*controller.Controller)
}
