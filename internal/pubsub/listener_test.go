package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListener_Next(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewListener(ctx, broker)

	broker.Publish(AnalyzedEvent, 1)
	broker.Publish(ClearedEvent, 2)

	event, ok := listener.Next()
	require.True(t, ok)
	require.Equal(t, 1, event.Payload)
	require.Equal(t, AnalyzedEvent, event.Type)

	event, ok = listener.Next()
	require.True(t, ok)
	require.Equal(t, 2, event.Payload)
	require.Equal(t, ClearedEvent, event.Type)
}

func TestListener_ContextCancelled(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	listener := NewListener(ctx, broker)

	cancel()

	_, ok := listener.Next()
	require.False(t, ok, "should stop when context cancelled")
}

func TestListener_BrokerClosed(t *testing.T) {
	broker := NewBroker[string]()
	listener := NewListener(context.Background(), broker)

	broker.Close()

	done := make(chan bool, 1)
	go func() {
		_, ok := listener.Next()
		done <- ok
	}()

	select {
	case ok := <-done:
		require.False(t, ok, "should stop when broker closed")
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "Next blocked after broker close")
	}
}

func TestListener_Types(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	listener := NewListener(context.Background(), broker, ClearedEvent)
	broker.Publish(AnalyzedEvent, "skipped")
	broker.Publish(ClearedEvent, "kept")

	event, ok := listener.Next()
	require.True(t, ok)
	require.Equal(t, "kept", event.Payload)
}
