package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
	"github.com/aussiebroadwan/billybuddy/pkg/jwtx"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
	"github.com/stretchr/testify/require"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	serve(httpx.Chain(ok, mark("a"), mark("b")), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b"}, order)
}

func TestRequireAPIKey(t *testing.T) {
	t.Parallel()
	h := httpx.Chain(ok, httpx.RequireAPIKey("secret"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusUnauthorized, serve(h, r).Code)

	r.Header.Set(httpx.APIKeyHeader, "secret")
	require.Equal(t, http.StatusNoContent, serve(h, r).Code)

	open := httpx.Chain(ok, httpx.RequireAPIKey(""))
	require.Equal(t, http.StatusNoContent, serve(open, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestAuthnAndRole(t *testing.T) {
	t.Parallel()

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "test", NumKeys: 1})
	require.NoError(t, err)

	sign := func(r role.Role) string {
		tok, err := km.GetSigner().Sign(jwtx.NewAccessClaims(jwtx.AccessClaimsParams{Subject: "u1", Role: r, Issuer: "test"}))
		require.NoError(t, err)
		return tok
	}

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httpx.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := httpx.Chain(inner, httpx.AuthnMiddleware(km.Verifier), httpx.RequireAnyRole(role.Admin))

	t.Run("missing token", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("garbage token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer nope")
		require.Equal(t, http.StatusUnauthorized, serve(h, r).Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+sign(role.Tutor))
		rec := serve(h, r)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "permission_denied")
	})

	t.Run("admin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+sign(role.Admin))
		require.Equal(t, http.StatusOK, serve(h, r).Code)
		require.Equal(t, "u1", seen)
	})
}

func TestRateLimitByIPAndFormField(t *testing.T) {
	t.Parallel()

	cfg := httpx.RateLimit{Requests: 2, Window: time.Minute, Burst: 2}
	h := httpx.Chain(ok, httpx.RateLimitByIPAndFormField(cfg, "username"))

	post := func(user string) *httptest.ResponseRecorder {
		form := url.Values{"username": {user}}
		r := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.RemoteAddr = "10.0.0.1:1234"
		return serve(h, r)
	}

	require.Equal(t, http.StatusNoContent, post("ana@x.com").Code)
	require.Equal(t, http.StatusNoContent, post("ana@x.com").Code)

	rec := post("ana@x.com")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A different email from the same address has its own bucket.
	require.Equal(t, http.StatusNoContent, post("bia@x.com").Code)
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.5:4000"
	require.Equal(t, "192.168.1.5", httpx.ClientIP(r))

	r.Header.Set("X-Real-IP", "1.1.1.1")
	require.Equal(t, "1.1.1.1", httpx.ClientIP(r))

	r.Header.Set("X-Forwarded-For", "2.2.2.2, 3.3.3.3")
	require.Equal(t, "2.2.2.2", httpx.ClientIP(r))
}

func TestRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_TEST_REQUESTS", "42")
	t.Setenv("RATELIMIT_TEST_BURST", "-1")

	got := httpx.RateLimitFromEnv("TEST", httpx.StrictLimit)
	require.Equal(t, 42, got.Requests)
	require.Equal(t, httpx.StrictLimit.Burst, got.Burst)
	require.Equal(t, httpx.StrictLimit.Window, got.Window)
}
