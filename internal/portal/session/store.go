package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

// DefaultInitTimeout bounds the initial session fetch from persistence.
const DefaultInitTimeout = 5 * time.Second

// Options configures a Store.
type Options struct {
	// Key identifies the visitor in Persistence.
	Key         string
	Remote      Remote
	Resolver    *Resolver
	Persistence Persistence
	InitTimeout time.Duration
	Logger      *slog.Logger
}

// Store is the single writer of one visitor's session and profile. Readers
// get snapshots; every change goes through Set or SignOut and is announced
// to the registered listeners.
type Store struct {
	key         string
	remote      Remote
	resolver    *Resolver
	persist     Persistence
	initTimeout time.Duration
	logger      *slog.Logger

	mu        sync.RWMutex
	session   *Session
	profile   *Profile
	gen       uint64
	listeners map[int]func(*Session)
	nextID    int
}

func NewStore(opts Options) *Store {
	if opts.Persistence == nil {
		opts.Persistence = NewMemoryPersistence()
	}
	if opts.InitTimeout <= 0 {
		opts.InitTimeout = DefaultInitTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Resolver == nil {
		opts.Resolver = NewResolver(opts.Remote, 0, opts.Logger)
	}
	return &Store{
		key:         opts.Key,
		remote:      opts.Remote,
		resolver:    opts.Resolver,
		persist:     opts.Persistence,
		initTimeout: opts.InitTimeout,
		logger:      opts.Logger,
		listeners:   make(map[int]func(*Session)),
	}
}

// Session returns a copy of the current session, or nil.
func (st *Store) Session() *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.session == nil {
		return nil
	}
	s := *st.session
	return &s
}

// Profile returns a copy of the resolved profile, or nil while it is
// unknown.
func (st *Store) Profile() *Profile {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.profile == nil {
		return nil
	}
	p := *st.profile
	return &p
}

// OnSessionChange registers fn to run after every sign-in, refresh and
// sign-out. The returned func removes it.
func (st *Store) OnSessionChange(fn func(*Session)) (unsubscribe func()) {
	st.mu.Lock()
	id := st.nextID
	st.nextID++
	st.listeners[id] = fn
	st.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			st.mu.Lock()
			delete(st.listeners, id)
			st.mu.Unlock()
		})
	}
}

// Set installs a new or refreshed session, persists it and resolves its
// profile before notifying listeners. A refresh for the same user keeps the
// previous profile when the new fetch fails. Set(nil) clears local state
// without contacting the backend.
func (st *Store) Set(ctx context.Context, s *Session) {
	if s == nil {
		st.clear(ctx, nil)
		return
	}

	own := *s
	st.mu.Lock()
	st.gen++
	gen := st.gen
	if st.session == nil || st.session.UserID != own.UserID {
		st.profile = nil
	}
	st.session = &own
	st.mu.Unlock()

	if err := st.persist.Save(ctx, st.key, &own); err != nil {
		st.logger.WarnContext(ctx, "failed to persist session", slog.String("error", err.Error()))
	}

	p := st.resolver.Resolve(ctx, &own)

	st.mu.Lock()
	if st.gen != gen {
		// Superseded by a later Set or SignOut, which notifies on its own.
		st.mu.Unlock()
		return
	}
	if p != nil {
		st.profile = p
	}
	st.mu.Unlock()

	st.notify(&own)
}

// SignOut asks the backend to revoke the session and then clears the local
// session and profile whatever the outcome. Remote failures are logged.
// Calling it without a session is a no-op.
func (st *Store) SignOut(ctx context.Context) {
	st.mu.RLock()
	s := st.session
	st.mu.RUnlock()

	if s == nil {
		return
	}

	if err := st.remote.Revoke(ctx, s); err != nil {
		st.logger.WarnContext(ctx, "remote sign-out failed, clearing local session",
			slog.String("user_id", s.UserID),
			slog.String("error", err.Error()),
		)
	}

	st.clear(ctx, s)
}

// clear drops the local session if it is still want (any session when want
// is nil).
func (st *Store) clear(ctx context.Context, want *Session) {
	st.mu.Lock()
	if st.session == nil || (want != nil && st.session != want) {
		st.mu.Unlock()
		return
	}
	st.gen++
	st.session = nil
	st.profile = nil
	st.mu.Unlock()

	if err := st.persist.Delete(ctx, st.key); err != nil {
		st.logger.WarnContext(ctx, "failed to delete persisted session", slog.String("error", err.Error()))
	}

	st.notify(nil)
}

// Init restores the persisted session. A slow or failing persistence layer
// resolves to "no session" after the init timeout.
func (st *Store) Init(ctx context.Context) *Session {
	loadCtx, cancel := context.WithTimeout(ctx, st.initTimeout)
	defer cancel()

	type result struct {
		s   *Session
		err error
	}
	done := make(chan result, 1)
	go func() {
		s, err := st.persist.Load(loadCtx, st.key)
		done <- result{s, err}
	}()

	var restored *Session
	select {
	case res := <-done:
		if res.err != nil {
			st.logger.WarnContext(ctx, "failed to restore session", slog.String("error", res.err.Error()))
			return nil
		}
		restored = res.s
	case <-loadCtx.Done():
		st.logger.WarnContext(ctx, "session restore timed out", slog.Duration("timeout", st.initTimeout))
		return nil
	}

	if restored == nil {
		return nil
	}
	if restored.RefreshToken == "" && time.Now().After(restored.ExpiresAt) {
		if err := st.persist.Delete(ctx, st.key); err != nil {
			st.logger.WarnContext(ctx, "failed to delete expired session", slog.String("error", err.Error()))
		}
		return nil
	}

	st.Set(ctx, restored)
	return st.Session()
}

// ResolveProfile fetches the profile again when it is missing or
// provisional and returns the profile held afterwards.
func (st *Store) ResolveProfile(ctx context.Context) *Profile {
	return st.resolve(ctx, false)
}

// ReloadProfile fetches the profile even when one is held, for example after
// the user changed a password and the must-change flag was cleared. The
// current profile is kept when the fetch fails.
func (st *Store) ReloadProfile(ctx context.Context) *Profile {
	return st.resolve(ctx, true)
}

func (st *Store) resolve(ctx context.Context, force bool) *Profile {
	st.mu.RLock()
	s, p, gen := st.session, st.profile, st.gen
	st.mu.RUnlock()

	if s == nil || (!force && p != nil && !p.Provisional) {
		return st.Profile()
	}

	fresh := st.resolver.Resolve(ctx, s)
	if fresh == nil {
		return st.Profile()
	}

	st.mu.Lock()
	if st.gen != gen {
		st.mu.Unlock()
		return st.Profile()
	}
	st.profile = fresh
	st.mu.Unlock()

	st.notify(s)
	return st.Profile()
}

// UseProvisionalProfile fills a missing profile with a placeholder of role
// r so a sign-in whose profile fetch stalled can still complete.
func (st *Store) UseProvisionalProfile(r role.Role) *Profile {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.session == nil || st.profile != nil {
		return st.profileLocked()
	}
	st.profile = &Profile{
		ID:          st.session.UserID,
		Email:       st.session.Email,
		Role:        r,
		Provisional: true,
	}
	st.logger.Warn("using provisional profile",
		slog.String("user_id", st.session.UserID),
		slog.String("role", r.String()),
	)
	return st.profileLocked()
}

func (st *Store) profileLocked() *Profile {
	if st.profile == nil {
		return nil
	}
	p := *st.profile
	return &p
}

func (st *Store) notify(s *Session) {
	st.mu.RLock()
	fns := make([]func(*Session), 0, len(st.listeners))
	for _, fn := range st.listeners {
		fns = append(fns, fn)
	}
	st.mu.RUnlock()

	var snapshot *Session
	if s != nil {
		c := *s
		snapshot = &c
	}
	for _, fn := range fns {
		fn(snapshot)
	}
}
