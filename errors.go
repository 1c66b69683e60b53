package ddbgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/ddbgo/client"
	"github.com/hupe1980/ddbgo/internal/handle"
	"github.com/hupe1980/ddbgo/stream"
	"github.com/hupe1980/ddbgo/value"
)

var (
	// ErrInvalidHandle is returned for handles that were never issued or
	// have been released.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrInternal wraps a panic recovered at the boundary.
	ErrInternal = errors.New("internal fault")

	// ErrTypeMismatch is returned when an operation does not fit the value.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrOutOfRange is returned for failed bounds or capacity checks.
	ErrOutOfRange = errors.New("out of range")

	// ErrClosed is returned by a closed Bridge and by closed connections and
	// polling clients.
	ErrClosed = errors.New("bridge closed")

	ErrNotConnected         = client.ErrNotConnected
	ErrConnectionLost       = client.ErrConnectionLost
	ErrTooManySubscriptions = stream.ErrTooManySubscriptions
	ErrNotSubscribed        = stream.ErrNotSubscribed
)

// HandleKindError indicates a handle that refers to the wrong kind of object.
type HandleKindError struct {
	Want string
	Got  string
}

func (e *HandleKindError) Error() string {
	return fmt.Sprintf("handle kind mismatch: want %s, got %s", e.Want, e.Got)
}

// Unwrap makes HandleKindError match ErrTypeMismatch.
func (e *HandleKindError) Unwrap() error { return ErrTypeMismatch }

// PanicError carries a recovered panic value.
//
// It matches ErrInternal via errors.Is.
type PanicError struct {
	Op    string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrInternal, e.Value)
}

func (e *PanicError) Unwrap() error { return ErrInternal }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, handle.ErrInvalid) {
		return fmt.Errorf("%w: %w", ErrInvalidHandle, err)
	}
	if errors.Is(err, value.ErrShape) {
		return fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}

	if errors.Is(err, stream.ErrClosed) || errors.Is(err, client.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}
