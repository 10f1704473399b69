package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New[int]()
	defer bus.Close()

	ch, err := bus.Subscribe("a", 4)
	require.NoError(t, err)

	bus.Publish(1)
	bus.Publish(2)

	assert.Equal(t, 1, <-ch)
	assert.Equal(t, 2, <-ch)
}

func TestBus_DuplicateSubscriber(t *testing.T) {
	bus := New[int]()
	defer bus.Close()

	_, err := bus.Subscribe("a", 1)
	require.NoError(t, err)
	_, err = bus.Subscribe("a", 1)
	assert.ErrorIs(t, err, ErrSubscriberExists)
}

func TestBus_PublishNeverBlocksAndKeepsLatest(t *testing.T) {
	bus := New[int]()
	defer bus.Close()

	ch, err := bus.Subscribe("slow", 1)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 1; i <= 10; i++ {
			bus.Publish(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}

	assert.Equal(t, 10, <-ch)

	stats := bus.Stats()
	assert.Equal(t, uint64(10), stats.TotalPublished)
	assert.Equal(t, uint64(10), stats.Subscribers["slow"].Sent)
	assert.Equal(t, uint64(9), stats.Subscribers["slow"].Replaced)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New[int]()
	defer bus.Close()

	ch, err := bus.Subscribe("a", 1)
	require.NoError(t, err)

	require.NoError(t, bus.Unsubscribe("a"))
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, bus.Len())

	assert.ErrorIs(t, bus.Unsubscribe("a"), ErrSubscriberNotFound)
}

func TestBus_Close(t *testing.T) {
	bus := New[string]()

	ch, err := bus.Subscribe("a", 1)
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	_, open := <-ch
	assert.False(t, open)

	_, err = bus.Subscribe("b", 1)
	assert.ErrorIs(t, err, ErrBusClosed)
	assert.ErrorIs(t, bus.Unsubscribe("a"), ErrBusClosed)

	assert.NotPanics(t, func() { bus.Publish("late") })
}

func TestBus_FanOut(t *testing.T) {
	bus := New[int]()
	defer bus.Close()

	a, _ := bus.Subscribe("a", 2)
	b, _ := bus.Subscribe("b", 2)

	bus.Publish(7)

	assert.Equal(t, 7, <-a)
	assert.Equal(t, 7, <-b)
	assert.Equal(t, uint64(2), bus.Stats().TotalSent)
}
