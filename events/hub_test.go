package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToTeamOnly(t *testing.T) {
	hub := NewHub()
	teamA, cancelA := hub.Subscribe(1)
	defer cancelA()
	teamB, cancelB := hub.Subscribe(2)
	defer cancelB()

	e := New("task", ActionCreated, 10, 1)
	require.NoError(t, hub.Publish(context.Background(), e))

	select {
	case got := <-teamA:
		assert.Equal(t, Event{Type: "task.created", Resource: "task", ID: 10, TeamID: 1}, got)
	default:
		t.Fatal("team 1 subscriber got nothing")
	}
	assert.Empty(t, teamB)
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewHub()
	slow, cancel := hub.Subscribe(1)
	defer cancel()

	for i := 0; i < subscriberBuffer; i++ {
		assert.Equal(t, 1, hub.Deliver(New("task", ActionUpdated, uint(i), 1)))
	}
	assert.Equal(t, 0, hub.Deliver(New("task", ActionUpdated, 999, 1)))
	assert.Len(t, slow, subscriberBuffer)
}

func TestHubCancel(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(1)
	assert.Equal(t, 1, hub.Subscribers(1))

	cancel()
	cancel()

	assert.Equal(t, 0, hub.Subscribers(1))
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Deliver(New("board", ActionDeleted, 1, 1)))
}
