package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToSubscribers(t *testing.T) {
	hub := NewHub(4)

	a1, cancelA1 := hub.Subscribe("a")
	a2, cancelA2 := hub.Subscribe("a")
	b, cancelB := hub.Subscribe("b")
	defer cancelA1()
	defer cancelA2()
	defer cancelB()
	assert.Equal(t, 3, hub.Streams())

	hub.PublishToMany([]string{"a"}, Message{Name: "notification", Data: "hello"})

	require.Len(t, a1, 1)
	require.Len(t, a2, 1)
	assert.Len(t, b, 0)
	assert.Equal(t, "hello", (<-a1).Data)
}

func TestHub_FullStreamDrops(t *testing.T) {
	hub := NewHub(1)
	dropped := 0
	hub.OnDrop = func(string) { dropped++ }

	ch, cancel := hub.Subscribe("a")
	defer cancel()

	hub.Publish("a", Message{Name: "one"})
	hub.Publish("a", Message{Name: "two"})

	assert.Equal(t, 1, dropped)
	assert.Equal(t, "one", (<-ch).Name)
}

func TestHub_CancelClosesOnce(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe("a")

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Streams())

	hub.Publish("a", Message{Name: "after"})
}
