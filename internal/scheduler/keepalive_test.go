package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/isotoolkit/keeper/internal/domain"
	"github.com/isotoolkit/keeper/internal/logger"
	"github.com/isotoolkit/keeper/internal/stats"
)

type scriptedPinger struct {
	calls    atomic.Int64
	outcomes []bool
}

func (p *scriptedPinger) Ping(_ context.Context, _ string, _ time.Duration) domain.PingResult {
	n := p.calls.Add(1)
	ok := true
	if int(n) <= len(p.outcomes) {
		ok = p.outcomes[n-1]
	}
	if ok {
		return domain.PingResult{OK: true, Message: "site is online", HTTPStatus: 200}
	}
	return domain.PingResult{OK: false, Message: "connection refused"}
}

func TestKeepAlive_RunsImmediatelyAndRecords(t *testing.T) {
	pinger := &scriptedPinger{outcomes: []bool{true}}
	counter := stats.NewCounter()
	ka := NewKeepAlive(pinger, counter, logger.New("error", false),
		"https://example.test/", time.Second, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ka.Start(ctx); err != nil {
		t.Fatalf("Start() = %v, want nil", err)
	}
	defer ka.Stop()

	// First tick is synchronous within Start.
	if got := pinger.calls.Load(); got != 1 {
		t.Errorf("pinger called %d times right after Start, want 1", got)
	}
	snap := counter.Snapshot()
	if snap.Total != 1 || snap.Success != 1 {
		t.Errorf("counter = %+v after successful tick, want total=1 success=1", snap)
	}
}

func TestKeepAlive_RecordsFailures(t *testing.T) {
	pinger := &scriptedPinger{outcomes: []bool{false, true, false}}
	counter := stats.NewCounter()
	ka := NewKeepAlive(pinger, counter, logger.New("error", false),
		"https://example.test/", time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ka.Start(ctx); err != nil {
		t.Fatalf("Start() = %v, want nil", err)
	}

	deadline := time.After(2 * time.Second)
	for pinger.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("pinger called %d times, want at least 3", pinger.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	ka.Stop()

	snap := counter.Snapshot()
	if snap.Total < 3 {
		t.Errorf("counter total = %d, want >= 3", snap.Total)
	}
	if snap.Failed < 2 {
		t.Errorf("counter failed = %d, want >= 2", snap.Failed)
	}
	if snap.Success+snap.Failed != snap.Total {
		t.Errorf("counter inconsistent: %+v", snap)
	}
}

func TestKeepAlive_StopsOnContextCancel(t *testing.T) {
	pinger := &scriptedPinger{}
	counter := stats.NewCounter()
	ka := NewKeepAlive(pinger, counter, logger.New("error", false),
		"https://example.test/", time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	if err := ka.Start(ctx); err != nil {
		t.Fatalf("Start() = %v, want nil", err)
	}
	cancel()

	time.Sleep(30 * time.Millisecond)
	after := pinger.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if got := pinger.calls.Load(); got > after+1 {
		t.Errorf("pinger still ticking after cancel: %d -> %d", after, got)
	}
}
