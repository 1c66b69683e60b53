package stream

import "errors"

var (
	// ErrInvalidRequest is returned for malformed subscription requests.
	ErrInvalidRequest = errors.New("stream: invalid request")

	// ErrAlreadySubscribed is returned when the topic is already active.
	ErrAlreadySubscribed = errors.New("stream: already subscribed")

	// ErrNotSubscribed is returned by Unsubscribe for unknown topics.
	ErrNotSubscribed = errors.New("stream: not subscribed")

	// ErrTooManySubscriptions is returned when every subscription slot is taken.
	ErrTooManySubscriptions = errors.New("stream: too many subscriptions")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("stream: closed")

	// ErrUnknownTable is returned when subscribing to a missing stream table.
	ErrUnknownTable = errors.New("stream: unknown stream table")

	// ErrOffsetOutOfRange is returned when the offset is past the end.
	ErrOffsetOutOfRange = errors.New("stream: offset out of range")

	// ErrConnectionLost is returned by a feed whose publisher dropped it.
	ErrConnectionLost = errors.New("stream: connection lost")

	// ErrAuth is returned when the publisher rejects the credentials.
	ErrAuth = errors.New("stream: authentication failed")
)
