package stats

import (
	"sync"
	"testing"
)

func TestCounter_Record(t *testing.T) {
	c := NewCounter()

	c.Record(true)
	c.Record(true)
	c.Record(false)

	snap := c.Snapshot()
	if snap.Total != 3 {
		t.Errorf("Total = %d, want 3", snap.Total)
	}
	if snap.Success != 2 {
		t.Errorf("Success = %d, want 2", snap.Success)
	}
	if snap.Failed != 1 {
		t.Errorf("Failed = %d, want 1", snap.Failed)
	}
}

func TestCounter_ExactlyOneOutcomePerRecord(t *testing.T) {
	c := NewCounter()
	for i := 0; i < 10; i++ {
		c.Record(i%2 == 0)
	}

	snap := c.Snapshot()
	if snap.Success+snap.Failed != snap.Total {
		t.Errorf("Success(%d) + Failed(%d) != Total(%d)", snap.Success, snap.Failed, snap.Total)
	}
}

func TestCounter_ConcurrentWriters(t *testing.T) {
	c := NewCounter()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(ok bool) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Record(ok)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.Total != 8000 {
		t.Errorf("Total = %d, want 8000", snap.Total)
	}
	if snap.Success != 4000 || snap.Failed != 4000 {
		t.Errorf("Success/Failed = %d/%d, want 4000/4000", snap.Success, snap.Failed)
	}
}

func TestSnapshot_SuccessRate(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want float64
	}{
		{name: "empty", snap: Snapshot{}, want: 0},
		{name: "all success", snap: Snapshot{Total: 4, Success: 4}, want: 100},
		{name: "half", snap: Snapshot{Total: 4, Success: 2, Failed: 2}, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.SuccessRate(); got != tt.want {
				t.Errorf("SuccessRate() = %v, want %v", got, tt.want)
			}
		})
	}
}
