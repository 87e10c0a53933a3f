package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_StartsAtZero(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Press())
	assert.Equal(t, int64(0), c.Seq())
}

func TestClock_SeqNeverResetsBetweenPresses(t *testing.T) {
	c := NewClock()

	assert.Equal(t, int64(1), c.NextPress())
	assert.Equal(t, int64(1), c.NextSeq())
	assert.Equal(t, int64(2), c.NextSeq())

	assert.Equal(t, int64(2), c.NextPress())
	assert.Equal(t, int64(3), c.NextSeq())

	assert.Equal(t, int64(2), c.Press())
	assert.Equal(t, int64(3), c.Seq())
}
