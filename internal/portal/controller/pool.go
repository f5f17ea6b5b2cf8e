package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultIdleTTL is how long an untouched controller stays in memory.
const DefaultIdleTTL = 30 * time.Minute

// Factory builds the controller for a new visitor id.
type Factory func(id string) *Controller

// Pool holds one Controller per visitor and evicts idle ones. Evicting a
// controller keeps its persisted session, so the visitor's next request
// restores it.
type Pool struct {
	factory Factory
	idleTTL time.Duration
	logger  *slog.Logger

	mu          sync.Mutex
	controllers map[string]*Controller

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewPool(factory Factory, idleTTL time.Duration, logger *slog.Logger) *Pool {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Pool{
		factory:     factory,
		idleTTL:     idleTTL,
		logger:      logger,
		controllers: make(map[string]*Controller),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Get returns the controller of id, creating it on first use and waiting
// for its session to be restored.
func (p *Pool) Get(ctx context.Context, id string) *Controller {
	p.mu.Lock()
	c, ok := p.controllers[id]
	if !ok {
		c = p.factory(id)
		p.controllers[id] = c
	}
	p.mu.Unlock()

	c.Init(ctx)
	c.Touch()
	return c
}

// Len reports how many visitors are held.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.controllers)
}

// Evict drops controllers idle since before now minus the idle TTL.
func (p *Pool) Evict(now time.Time) int {
	cutoff := now.Add(-p.idleTTL)

	p.mu.Lock()
	var idle []*Controller
	for id, c := range p.controllers {
		if c.LastSeen().Before(cutoff) {
			idle = append(idle, c)
			delete(p.controllers, id)
		}
	}
	p.mu.Unlock()

	for _, c := range idle {
		c.Close()
	}
	return len(idle)
}

// Start evicts idle visitors periodically until Stop.
func (p *Pool) Start() {
	go p.run()
	p.logger.Info("visitor eviction started", "idle_ttl", p.idleTTL)
}

// Stop blocks until the eviction loop exits.
func (p *Pool) Stop() {
	close(p.stopCh)
	<-p.doneCh
	p.logger.Info("visitor eviction stopped")
}

func (p *Pool) run() {
	defer close(p.doneCh)

	interval := p.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if n := p.Evict(now); n > 0 {
				p.logger.Info("evicted idle visitors", "count", n, "remaining", p.Len())
			}
		case <-p.stopCh:
			return
		}
	}
}
