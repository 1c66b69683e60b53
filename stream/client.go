package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/ddbgo/checkpoint"
	"github.com/hupe1980/ddbgo/resource"
	"golang.org/x/sync/errgroup"
)

// Stats describes one subscription.
type Stats struct {
	Topic      string
	Delivered  int64
	Reconnects int64
	LastOffset int64
	Queued     int
	Active     bool
}

type subscription struct {
	req   Request
	topic string
	queue *Queue

	cancel context.CancelFunc
	done   chan struct{}

	delivered  atomic.Int64
	reconnects atomic.Int64
	lastOffset atomic.Int64
}

// Client is a polling streaming client. Every subscription gets its own
// delivery goroutine and Queue; subscriptions are keyed by topic.
type Client struct {
	listenPort int
	dialer     Dialer
	opts       options
	ctl        *resource.Controller

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu      sync.Mutex
	subs    map[string]*subscription
	pending map[string]struct{}
	closed  bool
}

// NewClient creates a client. listenPort identifies the local endpoint
// feeds are delivered to.
func NewClient(listenPort int, dialer Dialer, optFns ...Option) *Client {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	ctl := opts.controller
	if ctl == nil {
		ctl = resource.NewController(resource.Config{
			MaxSubscriptions:  opts.maxSubscriptions,
			ReconnectInterval: opts.reconnectInterval,
		})
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		listenPort: listenPort,
		dialer:     dialer,
		opts:       opts,
		ctl:        ctl,
		ctx:        ctx,
		cancel:     cancel,
		subs:       make(map[string]*subscription),
		pending:    make(map[string]struct{}),
	}
}

// ListenPort returns the port given to NewClient.
func (c *Client) ListenPort() int { return c.listenPort }

// Subscribe subscribes to table on host:port under action, starting at
// offset (negative: from the end, or from the checkpoint if a store is set).
func (c *Client) Subscribe(ctx context.Context, host string, port int, table, action string, offset int64) (*Queue, error) {
	req := NewRequest(host, port, table)
	req.Action = action
	req.Offset = offset
	return c.SubscribeRequest(ctx, req)
}

// SubscribeRequest subscribes with full control over the request.
func (c *Client) SubscribeRequest(ctx context.Context, req Request) (*Queue, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	topic := req.Topic()

	if err := c.reserve(topic); err != nil {
		return nil, err
	}

	if req.Offset < 0 && c.opts.checkpoints != nil {
		off, err := c.opts.checkpoints.Load(ctx, topic)
		switch {
		case err == nil:
			req.Offset = off + 1
		case !errors.Is(err, checkpoint.ErrNotFound):
			c.opts.logger.WarnContext(ctx, "checkpoint load failed", "topic", topic, "error", err)
		}
	}

	feed, err := c.dialer.Subscribe(ctx, req)
	if err != nil {
		c.unreserve(topic)
		c.opts.logger.WarnContext(ctx, "subscribe failed", "topic", topic, "error", err)
		return nil, err
	}

	c.mu.Lock()
	delete(c.pending, topic)
	if c.closed {
		c.mu.Unlock()
		_ = feed.Close()
		c.ctl.ReleaseSubscription()
		return nil, ErrClosed
	}

	subCtx, cancel := context.WithCancel(c.ctx)
	sub := &subscription{
		req:    req,
		topic:  topic,
		queue:  newQueue(topic, c.opts.queueCapacity),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	sub.lastOffset.Store(-1)
	c.subs[topic] = sub

	c.group.Go(func() error {
		c.deliver(subCtx, sub, feed)
		return nil
	})
	c.mu.Unlock()

	c.opts.logger.InfoContext(ctx, "subscribed", "topic", topic, "offset", req.Offset)
	return sub.queue, nil
}

// reserve claims topic and a subscription slot while the feed is dialed.
func (c *Client) reserve(topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if _, ok := c.subs[topic]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySubscribed, topic)
	}
	if _, ok := c.pending[topic]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySubscribed, topic)
	}
	if err := c.ctl.TryAcquireSubscription(); err != nil {
		return fmt.Errorf("%w: %w", ErrTooManySubscriptions, err)
	}
	c.pending[topic] = struct{}{}
	return nil
}

func (c *Client) unreserve(topic string) {
	c.mu.Lock()
	delete(c.pending, topic)
	c.mu.Unlock()
	c.ctl.ReleaseSubscription()
}

// Unsubscribe ends delivery for the topic and waits for its delivery
// goroutine. Messages already queued remain pollable; afterwards Poll
// returns false. Other subscriptions are not affected.
func (c *Client) Unsubscribe(host string, port int, table, action string) error {
	topic := Topic(host, port, table, action)

	c.mu.Lock()
	sub, ok := c.subs[topic]
	if ok {
		delete(c.subs, topic)
	}
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, topic)
	}
	sub.cancel()
	<-sub.done
	c.opts.logger.Info("unsubscribed", "topic", topic, "delivered", sub.delivered.Load())
	return nil
}

// Topics returns the active topics in sorted order.
func (c *Client) Topics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.subs))
	for t := range c.subs {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Stats returns the counters of an active subscription.
func (c *Client) Stats(topic string) (Stats, bool) {
	c.mu.Lock()
	sub, ok := c.subs[topic]
	c.mu.Unlock()
	if !ok {
		return Stats{}, false
	}
	return Stats{
		Topic:      topic,
		Delivered:  sub.delivered.Load(),
		Reconnects: sub.reconnects.Load(),
		LastOffset: sub.lastOffset.Load(),
		Queued:     sub.queue.Len(),
		Active:     !sub.queue.Closed(),
	}, true
}

// Close ends every subscription and waits for the delivery goroutines.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.subs = make(map[string]*subscription)
	c.mu.Unlock()

	c.cancel()
	return c.group.Wait()
}

func (c *Client) deliver(ctx context.Context, sub *subscription, feed Feed) {
	log := c.opts.logger.With("topic", sub.topic)
	defer func() {
		sub.queue.close()
		c.ctl.ReleaseSubscription()
		close(sub.done)
	}()

	for {
		err := c.pump(ctx, sub, feed)
		_ = feed.Close()

		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, io.EOF):
			log.Info("feed ended by publisher")
			return
		case !sub.req.Reconnect:
			log.Warn("feed lost", "error", err)
			return
		}

		log.Warn("feed lost, reconnecting", "error", err)
		if feed = c.reconnect(ctx, sub); feed == nil {
			return
		}
	}
}

func (c *Client) pump(ctx context.Context, sub *subscription, feed Feed) error {
	for {
		m, err := feed.Recv(ctx)
		if err != nil {
			return err
		}
		if !sub.queue.push(m, ctx.Done()) {
			return ctx.Err()
		}
		sub.delivered.Add(1)
		sub.lastOffset.Store(m.Offset)

		if c.opts.checkpoints != nil {
			if err := c.opts.checkpoints.Save(ctx, sub.topic, m.Offset); err != nil && !errors.Is(err, checkpoint.ErrStale) {
				c.opts.logger.Warn("checkpoint save failed", "topic", sub.topic, "offset", m.Offset, "error", err)
			}
		}
	}
}

// reconnect re-dials until it succeeds or ctx ends, resuming after the
// last delivered offset.
func (c *Client) reconnect(ctx context.Context, sub *subscription) Feed {
	timer := time.NewTimer(sub.req.ReconnectTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		if err := c.ctl.WaitReconnect(ctx); err != nil {
			return nil
		}

		req := sub.req
		if last := sub.lastOffset.Load(); last >= 0 {
			req.Offset = last + 1
		}
		sub.reconnects.Add(1)

		feed, err := c.dialer.Subscribe(ctx, req)
		if err == nil {
			c.opts.logger.Info("reconnected", "topic", sub.topic, "offset", req.Offset)
			return feed
		}
		c.opts.logger.Warn("reconnect failed", "topic", sub.topic, "error", err)
		timer.Reset(sub.req.ReconnectTimeout)
	}
}
