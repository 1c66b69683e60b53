package client

import (
	"context"
	"fmt"
	"strconv"
)

// BehaviorOptions tune how the engine schedules one request.
type BehaviorOptions struct {
	// Priority ranges from 0 (lowest) to 9.
	Priority int

	// Parallelism is the number of workers the request may occupy, 1 to 64.
	Parallelism int

	// FetchSize asks for results in blocks of that many rows. Zero returns
	// the whole result at once; otherwise it must be at least 8192.
	FetchSize int
}

// DefaultBehaviorOptions returns priority 4, parallelism 64 and no fetch
// size.
func DefaultBehaviorOptions() BehaviorOptions {
	return BehaviorOptions{Priority: 4, Parallelism: 64}
}

// Validate checks the ranges documented on the fields.
func (o BehaviorOptions) Validate() error {
	switch {
	case o.Priority < 0 || o.Priority > 9:
		return fmt.Errorf("%w: priority %d not in [0,9]", ErrInvalidArgument, o.Priority)
	case o.Parallelism < 1 || o.Parallelism > 64:
		return fmt.Errorf("%w: parallelism %d not in [1,64]", ErrInvalidArgument, o.Parallelism)
	case o.FetchSize != 0 && o.FetchSize < 8192:
		return fmt.Errorf("%w: fetch size %d below 8192", ErrInvalidArgument, o.FetchSize)
	}
	return nil
}

// Flag renders the options as they trail a request header.
func (o BehaviorOptions) Flag() string {
	s := " / 0_1_" + strconv.Itoa(o.Priority) + "_" + strconv.Itoa(o.Parallelism)
	if o.FetchSize > 0 {
		s += "__" + strconv.Itoa(o.FetchSize)
	}
	return s
}

// RunOption adjusts the BehaviorOptions of one Run or Call.
type RunOption func(*BehaviorOptions)

// WithPriority sets the scheduling priority.
func WithPriority(p int) RunOption {
	return func(o *BehaviorOptions) { o.Priority = p }
}

// WithParallelism sets the worker limit.
func WithParallelism(n int) RunOption {
	return func(o *BehaviorOptions) { o.Parallelism = n }
}

// WithFetchSize sets the result block size.
func WithFetchSize(n int) RunOption {
	return func(o *BehaviorOptions) { o.FetchSize = n }
}

type behaviorKey struct{}

// WithBehavior returns a context carrying o to the Session.
func WithBehavior(ctx context.Context, o BehaviorOptions) context.Context {
	return context.WithValue(ctx, behaviorKey{}, o)
}

// BehaviorFromContext returns the options of the current request, or the
// defaults.
func BehaviorFromContext(ctx context.Context) BehaviorOptions {
	if o, ok := ctx.Value(behaviorKey{}).(BehaviorOptions); ok {
		return o
	}
	return DefaultBehaviorOptions()
}

func applyRunOptions(ctx context.Context, opts []RunOption) (context.Context, error) {
	if len(opts) == 0 {
		return ctx, nil
	}
	o := BehaviorFromContext(ctx)
	for _, fn := range opts {
		fn(&o)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return WithBehavior(ctx, o), nil
}
