package controller_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/billybuddy/internal/portal/controller"
	"github.com/aussiebroadwan/billybuddy/internal/portal/nav"
	"github.com/aussiebroadwan/billybuddy/internal/portal/session"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

func newPool(b *fakeBackend, persist session.Persistence) *controller.Pool {
	return controller.NewPool(func(id string) *controller.Controller {
		return controller.New(id, b, persist, testConfig(), slogx.Discard())
	}, time.Minute, slogx.Discard())
}

func TestPoolReusesControllerPerVisitor(t *testing.T) {
	p := newPool(newFakeBackend(), session.NewMemoryPersistence())
	ctx := context.Background()

	a := p.Get(ctx, "a")
	assert.Same(t, a, p.Get(ctx, "a"))
	assert.NotSame(t, a, p.Get(ctx, "b"))
	assert.Equal(t, 2, p.Len())
}

func TestPoolEvictionKeepsPersistedSession(t *testing.T) {
	b := newFakeBackend(clone(tutor))
	persist := session.NewMemoryPersistence()
	p := newPool(b, persist)
	ctx := context.Background()

	c := p.Get(ctx, "visitor")
	_, err := c.Login(ctx, role.Tutor, "tutor@x.com", "validpass")
	require.NoError(t, err)

	assert.Zero(t, p.Evict(time.Now()))
	assert.Equal(t, 1, p.Evict(time.Now().Add(2*time.Minute)))
	assert.Zero(t, p.Len())

	restored := p.Get(ctx, "visitor")
	require.NotSame(t, c, restored)

	state := restored.State()
	assert.True(t, state.SignedIn)
	assert.Equal(t, nav.Login, state.View)
	require.NotNil(t, state.Profile)
	assert.Equal(t, role.Tutor, state.Profile.Role)
}

func TestPoolStartStop(t *testing.T) {
	p := newPool(newFakeBackend(), session.NewMemoryPersistence())
	p.Start()
	p.Get(context.Background(), "a")
	p.Stop()
	assert.Equal(t, 1, p.Len())
}
