package stats

import "sync"

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Total   uint64 `json:"total"`
	Success uint64 `json:"success"`
	Failed  uint64 `json:"failed"`
}

// SuccessRate returns the success ratio in percent, 0 when nothing was
// recorded yet.
func (s Snapshot) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Total) * 100
}

// Counter tallies ping outcomes for the process lifetime. The background
// keep-alive job and operator-issued checks write concurrently, so access
// is guarded by a mutex. Nothing is persisted; restart resets the counts.
type Counter struct {
	mu      sync.Mutex
	total   uint64
	success uint64
	failed  uint64
}

func NewCounter() *Counter {
	return &Counter{}
}

// Record increments total always, and exactly one of success or failed.
func (c *Counter) Record(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	if ok {
		c.success++
	} else {
		c.failed++
	}
}

// Snapshot returns a consistent copy of the counters.
func (c *Counter) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Total:   c.total,
		Success: c.success,
		Failed:  c.failed,
	}
}
