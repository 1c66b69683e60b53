// Package resource bounds the streaming client's shared resources: the
// number of concurrently active subscriptions and the pace of reconnect
// attempts across all of them.
package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrNoSlot is returned by TryAcquireSubscription when every slot is taken.
var ErrNoSlot = errors.New("resource: no subscription slot available")

// Config holds resource limits.
type Config struct {
	// MaxSubscriptions is the maximum number of concurrently active
	// subscriptions. If 0, unlimited.
	MaxSubscriptions int64

	// ReconnectInterval is the minimum spacing between reconnect attempts
	// across all subscriptions. If 0, reconnects are not paced.
	ReconnectInterval time.Duration

	// ReconnectBurst is the number of reconnects allowed back to back.
	// If 0, defaults to 1.
	ReconnectBurst int
}

// Controller manages subscription slots and reconnect pacing.
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	subSem *semaphore.Weighted // nil if unlimited
	active atomic.Int64

	reconnects *rate.Limiter // nil if unpaced
	attempts   atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.ReconnectBurst <= 0 {
		cfg.ReconnectBurst = 1
	}

	c := &Controller{cfg: cfg}

	if cfg.MaxSubscriptions > 0 {
		c.subSem = semaphore.NewWeighted(cfg.MaxSubscriptions)
	}

	if cfg.ReconnectInterval > 0 {
		c.reconnects = rate.NewLimiter(rate.Every(cfg.ReconnectInterval), cfg.ReconnectBurst)
	}

	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireSubscription reserves a subscription slot, blocking until one is
// free or ctx is canceled.
func (c *Controller) AcquireSubscription(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.subSem != nil {
		if err := c.subSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.active.Add(1)
	return nil
}

// TryAcquireSubscription reserves a slot without blocking.
func (c *Controller) TryAcquireSubscription() error {
	if c == nil {
		return nil
	}
	if c.subSem != nil && !c.subSem.TryAcquire(1) {
		return ErrNoSlot
	}
	c.active.Add(1)
	return nil
}

// ReleaseSubscription frees a slot.
func (c *Controller) ReleaseSubscription() {
	if c == nil {
		return
	}
	if c.subSem != nil {
		c.subSem.Release(1)
	}
	c.active.Add(-1)
}

// ActiveSubscriptions returns the number of held slots.
func (c *Controller) ActiveSubscriptions() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}

// WaitReconnect blocks until the reconnect pacer admits another attempt.
func (c *Controller) WaitReconnect(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}
	c.attempts.Add(1)
	if c.reconnects == nil {
		return ctx.Err()
	}
	return c.reconnects.Wait(ctx)
}

// ReconnectAttempts returns the number of admitted or pending reconnects.
func (c *Controller) ReconnectAttempts() int64 {
	if c == nil {
		return 0
	}
	return c.attempts.Load()
}
