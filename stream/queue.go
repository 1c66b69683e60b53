package stream

import (
	"sync"
	"time"
)

// Queue is the bounded FIFO of one subscription. It has exactly one
// producer (the delivery goroutine) and is meant for one consumer.
type Queue struct {
	topic string
	ch    chan Message

	closeOnce sync.Once
	done      chan struct{}
}

func newQueue(topic string, capacity int) *Queue {
	return &Queue{
		topic: topic,
		ch:    make(chan Message, capacity),
		done:  make(chan struct{}),
	}
}

// Topic returns the subscription key the queue belongs to.
func (q *Queue) Topic() string { return q.topic }

// Len returns the number of queued messages.
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return cap(q.ch) }

// Poll removes and returns the oldest message, waiting up to timeout.
// A timeout <= 0 only checks for a queued message. It returns false on
// timeout and once the queue is closed and drained.
func (q *Queue) Poll(timeout time.Duration) (Message, bool) {
	if timeout <= 0 {
		select {
		case m, ok := <-q.ch:
			return m, ok
		default:
			return Message{}, false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case m, ok := <-q.ch:
		return m, ok
	case <-timer.C:
		return Message{}, false
	}
}

// Closed reports whether delivery has ended. Queued messages stay pollable.
func (q *Queue) Closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// Done is closed when delivery ends.
func (q *Queue) Done() <-chan struct{} { return q.done }

// push blocks until there is room or stop is closed.
func (q *Queue) push(m Message, stop <-chan struct{}) bool {
	select {
	case q.ch <- m:
		return true
	case <-stop:
		return false
	}
}

// close must only be called by the producer.
func (q *Queue) close() {
	q.closeOnce.Do(func() {
		close(q.ch)
		close(q.done)
	})
}
