package domain

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"
)

// Pinger issues single bounded-timeout GET requests to check whether a host
// is awake. Reachability, not HTTP success, defines "online": a 404 or 500
// still proves the host answered.
type Pinger struct {
	client *http.Client
}

// NewPinger creates a pinger with a fresh-connection HTTP client.
// Per-call timeouts come from the context built in Ping.
func NewPinger() *Pinger {
	return &Pinger{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					KeepAlive: 0,
				}).DialContext,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				DisableKeepAlives: true,
			},
		},
	}
}

// Ping performs exactly one GET against url. The call completes or fails
// within timeout. No retries; retry policy belongs to the caller.
func (p *Pinger) Ping(ctx context.Context, url string, timeout time.Duration) PingResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return PingResult{OK: false, Message: err.Error(), HTTPStatus: 0}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return PingResult{OK: false, Message: "request timed out", HTTPStatus: 0}
		}
		return PingResult{OK: false, Message: err.Error(), HTTPStatus: 0}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	return PingResult{OK: true, Message: "site is online", HTTPStatus: resp.StatusCode}
}

// Wake applies the single-retry policy: call once; if not ok, wait
// retryDelay and call exactly once more; report the second outcome.
func (p *Pinger) Wake(ctx context.Context, url string, timeout, retryDelay time.Duration) PingResult {
	res := p.Ping(ctx, url, timeout)
	if res.OK {
		return res
	}

	select {
	case <-ctx.Done():
		return res
	case <-time.After(retryDelay):
	}

	return p.Ping(ctx, url, timeout)
}

// isTimeout distinguishes an elapsed deadline from other transport failures
// (DNS, refusal, TLS).
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
