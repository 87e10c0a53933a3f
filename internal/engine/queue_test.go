package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/ir"
)

func TestPulseQueue_FIFO(t *testing.T) {
	q := newPulseQueue()
	q.Push(transmission{pulse: ir.Low, from: "x", to: "a"})
	q.Push(transmission{pulse: ir.High, from: "x", to: "b"})
	q.Push(transmission{pulse: ir.Low, from: "x", to: "c"})
	assert.Equal(t, 3, q.Len())

	var got []string
	for {
		tr, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, tr.to)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, q.Len())
}

func TestPulseQueue_InterleavedPushPop(t *testing.T) {
	q := newPulseQueue()
	q.Push(transmission{to: "a"})
	first, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", first.to)

	q.Push(transmission{to: "b"})
	q.Push(transmission{to: "c"})
	second, _ := q.Pop()
	q.Push(transmission{to: "d"})
	third, _ := q.Pop()
	fourth, _ := q.Pop()

	assert.Equal(t, []string{"b", "c", "d"}, []string{second.to, third.to, fourth.to})
	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestPulseQueue_Reset(t *testing.T) {
	q := newPulseQueue()
	q.Push(transmission{to: "a"})
	q.Push(transmission{to: "b"})
	_, _ = q.Pop()

	q.Reset()
	assert.Equal(t, 0, q.Len())
	_, ok := q.Pop()
	assert.False(t, ok)
}
