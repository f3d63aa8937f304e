package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/isotoolkit/keeper/internal/httpserver/deps"
	"github.com/isotoolkit/keeper/internal/stats"
)

type statsResponse struct {
	Target          string         `json:"target"`
	IntervalSeconds float64        `json:"interval_seconds"`
	UptimeSeconds   float64        `json:"uptime_seconds"`
	Pings           stats.Snapshot `json:"pings"`
	SuccessRate     float64        `json:"success_rate"`
	Operators       int            `json:"operators"`
}

// Stats exposes the ping tallies and allow-set size for scraping.
func Stats(d deps.Deps) http.HandlerFunc {
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.Counter.Snapshot()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(statsResponse{
			Target:          d.TargetURL,
			IntervalSeconds: d.PingInterval.Seconds(),
			UptimeSeconds:   now().Sub(d.StartTime).Seconds(),
			Pings:           snap,
			SuccessRate:     snap.SuccessRate(),
			Operators:       d.Gate.Count() + 1, // owner included
		})
	}
}
