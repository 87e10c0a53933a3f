package engine

import "github.com/roach88/pulsesim/internal/ir"

// transmission is one queued pulse on its way from one module to another.
type transmission struct {
	pulse ir.Pulse
	from  string
	to    string
}

// pulseQueue is a FIFO work list for a single press.
//
// The queue is unbounded; the engine's quota bounds how many pulses a press
// may deliver. Unlike an event queue shared between goroutines, it has no
// locking: it is only touched from inside Press.
type pulseQueue struct {
	items []transmission
	head  int
}

// newPulseQueue creates an empty queue.
func newPulseQueue() *pulseQueue {
	return &pulseQueue{items: make([]transmission, 0, 64)}
}

// Push appends a transmission to the back of the queue.
func (q *pulseQueue) Push(t transmission) {
	q.items = append(q.items, t)
}

// Pop removes and returns the front transmission.
// Returns false if the queue is empty.
func (q *pulseQueue) Pop() (transmission, bool) {
	if q.head >= len(q.items) {
		return transmission{}, false
	}
	t := q.items[q.head]
	q.items[q.head] = transmission{}
	q.head++

	// Reuse the backing array once drained.
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return t, true
}

// Len returns the number of queued transmissions.
func (q *pulseQueue) Len() int {
	return len(q.items) - q.head
}

// Reset discards everything still queued.
func (q *pulseQueue) Reset() {
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
}
