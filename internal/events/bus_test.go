package events

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishToAllSubscribers(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe()
	defer cancelA()
	b, cancelB := bus.Subscribe()
	defer cancelB()

	u, _ := url.Parse("http://localhost:8080")
	bus.Publish(Ready{Endpoint: u})

	for _, ch := range []<-chan StartupEvent{a, b} {
		ev := <-ch
		ready, ok := ev.(Ready)
		require.True(t, ok)
		assert.Equal(t, u, ready.Endpoint)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	bus.Publish(Failure{Kind: TimeoutErrorKind})
}

func TestBus_DropsWhenFull(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBufferSize+5; i++ {
		bus.Publish(Failure{Kind: StartupErrorKind})
	}
	assert.Len(t, ch, subscriberBufferSize)
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	bus.Close()
	bus.Close()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	late, _ := bus.Subscribe()
	_, open = <-late
	assert.False(t, open)
}
