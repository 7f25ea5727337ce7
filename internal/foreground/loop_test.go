package foreground

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_RunsTasksInOrder(t *testing.T) {
	loop := NewLoop(8)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	var got []int
	finished := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, loop.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, loop.Post(func() { close(finished) }))

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks did not run")
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)

	cancel()
	<-loop.Done()
	assert.ErrorIs(t, loop.Post(func() {}), ErrStopped)
}

func TestLoop_DrainsOnStop(t *testing.T) {
	loop := NewLoop(8)
	var count atomic.Int32
	for i := 0; i < 3; i++ {
		require.NoError(t, loop.Post(func() { count.Add(1) }))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, loop.Run(ctx))
	assert.Equal(t, int32(3), count.Load())
}

func TestLoop_SurvivesPanic(t *testing.T) {
	loop := NewLoop(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	ran := make(chan struct{})
	require.NoError(t, loop.Post(func() { panic("boom") }))
	require.NoError(t, loop.Post(func() { close(ran) }))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("loop stopped after panic")
	}
}

func TestImmediate(t *testing.T) {
	called := false
	require.NoError(t, Immediate{}.Post(func() { called = true }))
	assert.True(t, called)
}
