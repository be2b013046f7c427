// Package metrics exposes process-wide Prometheus collectors for the
// connection and world-paging core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors registered against a private registry so
// that repeated test construction never panics on duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	ActiveConns   prometheus.Gauge
	PacketsTotal  *prometheus.CounterVec
	ChunkLoads    prometheus.Counter
	WriteTimeouts prometheus.Counter
	Kicks         *prometheus.CounterVec
}

// New creates a fresh collector set registered against its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		ActiveConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxelgate_active_connections",
			Help: "Number of currently open client connections.",
		}),
		PacketsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voxelgate_packets_total",
			Help: "Packets processed, partitioned by direction and protocol stage.",
		}, []string{"direction", "stage"}),
		ChunkLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voxelgate_chunk_loads_total",
			Help: "Chunk positions queued for loading by the spiral loader.",
		}),
		WriteTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voxelgate_write_timeouts_total",
			Help: "Writer task send timeouts that resulted in a connection kick.",
		}),
		Kicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voxelgate_kicks_total",
			Help: "Connections closed and removed by the scheduler, partitioned by close reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.ActiveConns, m.PacketsTotal, m.ChunkLoads, m.WriteTimeouts, m.Kicks)
	return m
}

// Handler returns an HTTP handler exposing the registry in the Prometheus
// exposition format, suitable for mounting at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
