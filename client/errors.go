package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
)

var (
	// ErrNotConnected is returned by calls on a disconnected connection.
	ErrNotConnected = errors.New("client: not connected")

	// ErrAlreadyConnected is returned by Connect on a connected connection.
	ErrAlreadyConnected = errors.New("client: already connected")

	// ErrInvalidArgument is returned for malformed call arguments.
	ErrInvalidArgument = errors.New("client: invalid argument")

	// ErrAuth is returned when the session rejects the credentials.
	ErrAuth = errors.New("client: authentication failed")

	// ErrClosed is returned by every operation on a connection that was
	// closed or lost its session.
	ErrClosed = errors.New("client: connection closed")

	// ErrConnectionLost marks a transport failure. Sessions return it, or a
	// net.Error, when the conversation with the engine broke off.
	ErrConnectionLost = errors.New("client: connection lost")
)

// RemoteError is a fault raised by the engine while executing a script.
// Both returned errors and panics of the session are reported this way.
//
// The underlying cause can be accessed via errors.Unwrap.
type RemoteError struct {
	Script string
	cause  error
}

// NewRemoteError wraps cause as a fault of script.
func NewRemoteError(script string, cause error) *RemoteError {
	return &RemoteError{Script: script, cause: cause}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error in %q: %v", e.Script, e.cause)
}

func (e *RemoteError) Unwrap() error { return e.cause }

// isTransport reports whether err broke the session rather than the script.
func isTransport(err error) bool {
	var re *RemoteError
	switch {
	case errors.As(err, &re):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrConnectionLost), errors.Is(err, net.ErrClosed),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
