package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/gray-logic-mysensors/internal/gateway"
)

// bytesPerMB converts runtime memory counters.
const bytesPerMB = 1024 * 1024

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string                  `json:"timestamp"`
	Version       string                  `json:"version"`
	UptimeSeconds int64                   `json:"uptime_seconds"`
	Runtime       RuntimeMetrics          `json:"runtime"`
	Gateway       gateway.MetricsSnapshot `json:"gateway"`
	Registry      RegistryMetrics         `json:"registry"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// RegistryMetrics summarises the published channel table.
type RegistryMetrics struct {
	Channels  int    `json:"channels"`
	Mapped    int    `json:"mapped"`
	Nodes     int    `json:"nodes"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// handleMetrics returns runtime, gateway and registry statistics as JSON.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / bytesPerMB,
			MemoryTotalMB: float64(memStats.TotalAlloc) / bytesPerMB,
			NumGC:         memStats.NumGC,
		},
	}

	if s.metrics != nil {
		metrics.Gateway = s.metrics.Snapshot()
	}

	channels := s.channels.Channels()
	nodes := make(map[int]struct{})
	for i := range channels {
		nodes[channels[i].Node] = struct{}{}
		if channels[i].Mapped() {
			metrics.Registry.Mapped++
		}
	}
	metrics.Registry.Channels = len(channels)
	metrics.Registry.Nodes = len(nodes)
	if at := s.channels.UpdatedAt(); !at.IsZero() {
		metrics.Registry.UpdatedAt = at.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, metrics)
}
