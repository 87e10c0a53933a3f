package engine

// Clock is the engine's logical clock.
//
// It numbers presses from 1 and stamps every delivered pulse with a strictly
// increasing seq that is never reset between presses. Replaying the same
// network from the same state produces the same (press, seq) stamps.
//
// Clock is not safe for concurrent use; the engine is single-threaded.
type Clock struct {
	press int64
	seq   int64
}

// NewClock creates a clock at press 0, seq 0.
func NewClock() *Clock {
	return &Clock{}
}

// NextPress advances to the next press and returns its number.
func (c *Clock) NextPress() int64 {
	c.press++
	return c.press
}

// NextSeq returns the next pulse sequence number.
func (c *Clock) NextSeq() int64 {
	c.seq++
	return c.seq
}

// Press returns the number of the current (or last completed) press.
func (c *Clock) Press() int64 {
	return c.press
}

// Seq returns the last issued sequence number.
func (c *Clock) Seq() int64 {
	return c.seq
}
