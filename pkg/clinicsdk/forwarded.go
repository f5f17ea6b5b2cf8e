package clinicsdk

import "context"

type forwardedKey struct{}

// WithForwardedFor returns a context whose backend calls carry addr in the
// X-Forwarded-For header. Servers that call the backend for many end users
// use it so per-address rate limits apply to each user rather than to the
// server itself.
func WithForwardedFor(ctx context.Context, addr string) context.Context {
	if addr == "" {
		return ctx
	}
	return context.WithValue(ctx, forwardedKey{}, addr)
}

// ForwardedFor returns the address set by WithForwardedFor, if any.
func ForwardedFor(ctx context.Context) string {
	addr, _ := ctx.Value(forwardedKey{}).(string)
	return addr
}
