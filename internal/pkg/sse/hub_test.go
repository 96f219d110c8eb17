package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishToTopicSubscribers(t *testing.T) {
	hub := NewHub()
	employees, cleanupA := hub.Subscribe("employees", "attendance")
	defer cleanupA()
	leaves, cleanupB := hub.Subscribe("leaves")
	defer cleanupB()

	hub.Publish("attendance", Event{Event: "INSERT", Data: "rec-1"})

	got := <-employees
	assert.Equal(t, "attendance", got.Topic)
	assert.Equal(t, "INSERT", got.Event)
	assert.Len(t, leaves, 0)
}

func TestHub_CleanupUnsubscribesAllTopics(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("employees", "payroll")
	assert.Equal(t, 1, hub.SubscriberCount("payroll"))
	assert.Equal(t, 1, hub.TotalSubscribers())

	cleanup()
	cleanup()

	assert.Equal(t, 0, hub.SubscriberCount("employees"))
	assert.Equal(t, 0, hub.TotalSubscribers())
	_, open := <-ch
	assert.False(t, open)

	// Publishing to a topic without subscribers is a no-op.
	hub.Publish("employees", Event{Event: "DELETE"})
}

func TestHub_PublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("leaves")
	defer cleanup()

	for i := 0; i < 100; i++ {
		hub.Publish("leaves", Event{Event: "UPDATE"})
	}
}
