package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimit is a token bucket budget: Requests per Window, with Burst tokens
// available up front.
type RateLimit struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// Rate limit profiles. Each can be overridden with RATELIMIT_<NAME>_REQUESTS,
// RATELIMIT_<NAME>_WINDOW_SEC and RATELIMIT_<NAME>_BURST via RateLimitFromEnv.
var (
	// StrictLimit guards credential endpoints (sign in, sign up, recovery).
	StrictLimit = RateLimit{Requests: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards authenticated writes.
	ModerateLimit = RateLimit{Requests: 30, Window: time.Minute, Burst: 30}

	// LenientLimit guards authenticated reads.
	LenientLimit = RateLimit{Requests: 120, Window: time.Minute, Burst: 120}
)

// RateLimitFromEnv returns def with any RATELIMIT_<name>_* overrides applied.
func RateLimitFromEnv(name string, def RateLimit) RateLimit {
	out := def
	if v, ok := positiveEnv("RATELIMIT_" + name + "_REQUESTS"); ok {
		out.Requests = v
	}
	if v, ok := positiveEnv("RATELIMIT_" + name + "_WINDOW_SEC"); ok {
		out.Window = time.Duration(v) * time.Second
	}
	if v, ok := positiveEnv("RATELIMIT_" + name + "_BURST"); ok {
		out.Burst = v
	}
	return out
}

func positiveEnv(key string) (int, bool) {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// KeyFunc derives the bucket key of a request. An empty key skips limiting.
type KeyFunc func(*http.Request) string

// ClientIP keys by the caller address, honouring X-Forwarded-For and
// X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserID keys by the authenticated subject.
func UserID(r *http.Request) string { return UserIDFromContext(r.Context()) }

// FormField keys by a form value such as the login email.
func FormField(name string) KeyFunc {
	return func(r *http.Request) string {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(r.FormValue(name)))
	}
}

// Composite joins the non-empty keys of several KeyFuncs.
func Composite(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, ":")
	}
}

type buckets struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	byKey    map[string]*rate.Limiter
	lastScan time.Time
}

const bucketScanInterval = 5 * time.Minute

func (b *buckets) get(key string) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if time.Since(b.lastScan) > bucketScanInterval {
		b.lastScan = time.Now()
		// A full bucket has been idle long enough to forget.
		for k, l := range b.byKey {
			if l.Tokens() >= float64(b.burst) {
				delete(b.byKey, k)
			}
		}
	}

	l, ok := b.byKey[key]
	if !ok {
		l = rate.NewLimiter(b.limit, b.burst)
		b.byKey[key] = l
	}
	return l
}

// RateLimitBy limits requests per key with the given budget. Rejected
// requests get 429 with Retry-After.
func RateLimitBy(cfg RateLimit, key KeyFunc) Middleware {
	b := &buckets{
		limit:    rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:    cfg.Burst,
		byKey:    make(map[string]*rate.Limiter),
		lastScan: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			l := b.get(k)
			if l.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := l.Reserve()
			retry := max(int(res.Delay().Seconds()), 1)
			res.Cancel()

			slogx.FromContext(r.Context()).Warn("rate limit exceeded", "key", k, "retry_after", retry)
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
			WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests, try again later")
		})
	}
}

// RateLimitByIP limits by caller address.
func RateLimitByIP(cfg RateLimit) Middleware { return RateLimitBy(cfg, ClientIP) }

// RateLimitByUser limits by authenticated user, falling back to the address.
func RateLimitByUser(cfg RateLimit) Middleware {
	return RateLimitBy(cfg, Composite(UserID, ClientIP))
}

// RateLimitByIPAndFormField limits by address plus a form field so one
// attacker cannot lock out another user's email.
func RateLimitByIPAndFormField(cfg RateLimit, field string) Middleware {
	return RateLimitBy(cfg, Composite(ClientIP, FormField(field)))
}
