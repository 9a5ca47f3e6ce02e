package control

import (
	"errors"
)

// ErrObserverFull is returned by QueueObserver when its buffer is full and the
// notification was dropped.
var ErrObserverFull = errors.New("observer queue is full")

// Observer receives notifications from a Channel. Notify must not block; a
// returned error is logged and otherwise ignored.
type Observer interface {
	Notify(Notification) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Notification) error

func (f ObserverFunc) Notify(n Notification) error {
	return f(n)
}

// QueueObserver buffers notifications in a channel for a consumer to read.
// When the buffer is full new notifications are dropped.
type QueueObserver struct {
	ch chan Notification
}

func NewQueueObserver(size int) *QueueObserver {
	return &QueueObserver{ch: make(chan Notification, size)}
}

func (q *QueueObserver) Notify(n Notification) error {
	select {
	case q.ch <- n:
		return nil
	default:
		return ErrObserverFull
	}
}

// C returns the channel notifications are delivered on.
func (q *QueueObserver) C() <-chan Notification {
	return q.ch
}
