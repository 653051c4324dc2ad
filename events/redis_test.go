package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBrokerRelaysIntoHub(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hub := NewHub()
	stream, cancel := hub.Subscribe(3)
	defer cancel()

	broker := NewRedisBroker(client, hub, nil)
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- broker.Run(ctx) }()

	want := New("subtask", ActionUpdated, 8, 3)
	// Publish until the relay is subscribed and the event comes through.
	var got Event
	require.Eventually(t, func() bool {
		if err := broker.Publish(context.Background(), want); err != nil {
			return false
		}
		select {
		case got = <-stream:
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, want, got)

	stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestRedisBrokerSkipsMalformedMessages(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hub := NewHub()
	stream, cancel := hub.Subscribe(1)
	defer cancel()

	broker := NewRedisBroker(client, hub, nil)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() { _ = broker.Run(ctx) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(Channel)[Channel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	mr.Publish(Channel, "{not json")
	require.NoError(t, broker.Publish(context.Background(), New("task", ActionDeleted, 1, 1)))

	select {
	case got := <-stream:
		assert.Equal(t, "task.deleted", got.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("valid event not relayed")
	}
}
