package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type update struct {
	Key     string
	Results int
}

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case e, ok := <-ch:
		require.True(t, ok, "channel closed")
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event[T]{}
	}
}

func TestBroker_DeliversToEverySubscriber(t *testing.T) {
	b := NewBroker[update]()
	defer b.Close()

	subs := []<-chan Event[update]{
		b.Subscribe(context.Background()),
		b.Subscribe(context.Background()),
	}
	require.Equal(t, 2, b.SubscriberCount())

	b.Publish(AnalyzedEvent, update{Key: "intro.tex", Results: 3})

	for _, ch := range subs {
		e := receive(t, ch)
		require.Equal(t, AnalyzedEvent, e.Type)
		require.Equal(t, update{Key: "intro.tex", Results: 3}, e.Payload)
		require.False(t, e.Timestamp.IsZero())
	}
}

func TestBroker_TypeFilter(t *testing.T) {
	b := NewBroker[update]()
	defer b.Close()

	cleared := b.Subscribe(context.Background(), ClearedEvent)
	all := b.Subscribe(context.Background())

	b.Publish(AnalyzedEvent, update{Key: "a"})
	b.Publish(ClearedEvent, update{Key: "b"})

	require.Equal(t, "b", receive(t, cleared).Payload.Key)
	require.Empty(t, cleared)

	require.Equal(t, "a", receive(t, all).Payload.Key)
	require.Equal(t, "b", receive(t, all).Payload.Key)
}

func TestBroker_ContextEndsSubscription(t *testing.T) {
	b := NewBroker[update]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool { return b.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-ch
	require.False(t, ok)

	// Publishing to nobody is fine.
	b.Publish(AnalyzedEvent, update{})
}

func TestBroker_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBrokerWithBuffer[update](1)
	defer b.Close()
	ch := b.Subscribe(context.Background())

	done := make(chan struct{})
	go func() {
		for i := range 3 {
			b.Publish(AnalyzedEvent, update{Results: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
	require.Equal(t, 0, receive(t, ch).Payload.Results)
	require.Equal(t, uint64(2), b.Dropped())
}

func TestBroker_ZeroBufferIsClamped(t *testing.T) {
	b := NewBrokerWithBuffer[update](0)
	defer b.Close()
	ch := b.Subscribe(context.Background())

	b.Publish(ClearedEvent, update{Key: "x"})
	require.Equal(t, "x", receive(t, ch).Payload.Key)
}

func TestBroker_Close(t *testing.T) {
	b := NewBroker[update]()
	ch := b.Subscribe(context.Background())

	b.Close()
	b.Close()

	_, ok := <-ch
	require.False(t, ok)
	require.Zero(t, b.SubscriberCount())

	late := b.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok)

	require.NotPanics(t, func() { b.Publish(AnalyzedEvent, update{}) })
}

func TestBroker_CancelAfterClose(t *testing.T) {
	b := NewBroker[update]()
	ctx, cancel := context.WithCancel(context.Background())
	b.Subscribe(ctx)
	b.Close()
	require.NotPanics(t, func() { cancel() })
}
