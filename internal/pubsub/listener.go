package pubsub

import "context"

// Listener wraps a broker subscription for pull-style consumers such as the
// log tail and the watch command's render loop.
type Listener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewListener subscribes to broker for the given types, or all types when
// none are given. The subscription ends with ctx.
func NewListener[T any](ctx context.Context, broker *Broker[T], types ...EventType) *Listener[T] {
	return &Listener[T]{
		ctx: ctx,
		ch:  broker.Subscribe(ctx, types...),
	}
}

// Next blocks until the next event arrives.
// Returns false once the context is cancelled or the broker is closed.
func (l *Listener[T]) Next() (Event[T], bool) {
	select {
	case <-l.ctx.Done():
		return Event[T]{}, false
	case event, ok := <-l.ch:
		return event, ok
	}
}

// C exposes the underlying channel for use in select statements.
func (l *Listener[T]) C() <-chan Event[T] {
	return l.ch
}
