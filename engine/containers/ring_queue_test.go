package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFOOrder(t *testing.T) {
	rq := NewRingQueue[int](4)
	assert.True(t, rq.IsEmpty())

	for i := 0; i < 4; i++ {
		rq.Enqueue(i)
	}
	assert.Equal(t, 4, rq.Len())

	for i := 0; i < 4; i++ {
		value, ok := rq.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, value)
	}
	assert.True(t, rq.IsEmpty())

	_, ok := rq.Dequeue()
	assert.False(t, ok)
}

func TestRingQueueGrowsPastInitialCapacity(t *testing.T) {
	rq := NewRingQueue[string](2)

	// wrap the read index around before forcing a grow
	rq.Enqueue("a")
	rq.Enqueue("b")
	value, ok := rq.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "a", value)

	rq.Enqueue("c")
	rq.Enqueue("d")
	rq.Enqueue("e")
	assert.Equal(t, 4, rq.Len())

	expected := []string{"b", "c", "d", "e"}
	for _, want := range expected {
		got, ok := rq.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestRingQueuePeekDoesNotRemove(t *testing.T) {
	rq := NewRingQueue[int](1)

	_, ok := rq.Peek()
	assert.False(t, ok)

	rq.Enqueue(42)
	value, ok := rq.Peek()
	require.True(t, ok)
	assert.Equal(t, 42, value)
	assert.Equal(t, 1, rq.Len())
}
