package scheduler

import (
	"context"
	"time"

	"github.com/isotoolkit/keeper/internal/domain"
	"github.com/isotoolkit/keeper/internal/logger"
	"github.com/isotoolkit/keeper/internal/stats"
)

// Pinger is the health-check dependency of the keep-alive job.
type Pinger interface {
	Ping(ctx context.Context, url string, timeout time.Duration) domain.PingResult
}

// KeepAlive pings the target URL on a fixed interval so an idle-suspend
// host never goes to sleep, and records every outcome in the counter.
type KeepAlive struct {
	pinger   Pinger
	counter  *stats.Counter
	logger   logger.Logger
	target   string
	timeout  time.Duration
	interval time.Duration
	stopCh   chan struct{}
}

// NewKeepAlive creates a new keep-alive job
func NewKeepAlive(
	pinger Pinger,
	counter *stats.Counter,
	log logger.Logger,
	target string,
	timeout time.Duration,
	interval time.Duration,
) *KeepAlive {
	return &KeepAlive{
		pinger:   pinger,
		counter:  counter,
		logger:   log,
		target:   target,
		timeout:  timeout,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic ping process. The first ping runs immediately.
func (ka *KeepAlive) Start(ctx context.Context) error {
	ka.tick(ctx)

	ticker := time.NewTicker(ka.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ka.tick(ctx)
			case <-ka.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the keep-alive job
func (ka *KeepAlive) Stop() {
	close(ka.stopCh)
}

// tick performs one ping and records the outcome. Counter writes happen
// only after the ping has fully resolved.
func (ka *KeepAlive) tick(ctx context.Context) {
	ka.logger.Debug("running auto-ping",
		logger.String("target", ka.target))

	res := ka.pinger.Ping(ctx, ka.target, ka.timeout)
	ka.counter.Record(res.OK)

	if res.OK {
		ka.logger.Info("auto-ping successful",
			logger.String("target", ka.target),
			logger.Int("http_status", res.HTTPStatus))
	} else {
		ka.logger.Warn("auto-ping failed",
			logger.String("target", ka.target),
			logger.String("reason", res.Message))
	}
}
