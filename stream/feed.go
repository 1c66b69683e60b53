package stream

import "context"

// Feed yields the messages of one subscription in append order.
//
// Recv returns io.EOF when the publisher ended the subscription, and any
// other error when the feed was lost; a lost feed may be re-dialed.
type Feed interface {
	Recv(ctx context.Context) (Message, error)
	Close() error
}

// Dialer opens feeds.
type Dialer interface {
	Subscribe(ctx context.Context, req Request) (Feed, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, req Request) (Feed, error)

// Subscribe calls f.
func (f DialerFunc) Subscribe(ctx context.Context, req Request) (Feed, error) {
	return f(ctx, req)
}
