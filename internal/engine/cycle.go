package engine

// CycleDetector remembers network snapshots by press index so a repeated
// configuration can be recognized.
//
// Because a press is a deterministic function of the network state, seeing
// the same snapshot hash before press i that was first seen before press j
// means presses j..i-1 repeat forever with period i-j.
//
// The detector keys on the snapshot hash from ir.Network.SnapshotHash; it
// does not keep the snapshots themselves.
type CycleDetector struct {
	first map[string]int64 // snapshot hash → first press index
}

// NewCycleDetector creates an empty detector.
func NewCycleDetector() *CycleDetector {
	return &CycleDetector{first: make(map[string]int64)}
}

// Observe records that the network had snapshot hash before press index.
//
// If the hash was seen before, Observe returns the earlier index and
// repeated=true, leaving the record unchanged. Otherwise it records index
// and returns (index, false).
func (c *CycleDetector) Observe(hash string, index int64) (first int64, repeated bool) {
	if prev, ok := c.first[hash]; ok {
		return prev, true
	}
	c.first[hash] = index
	return index, false
}

// Seen reports whether a hash has been observed.
func (c *CycleDetector) Seen(hash string) bool {
	_, ok := c.first[hash]
	return ok
}

// Size returns the number of distinct snapshots observed.
func (c *CycleDetector) Size() int {
	return len(c.first)
}

// Clear forgets every observed snapshot.
func (c *CycleDetector) Clear() {
	clear(c.first)
}
