package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	CommandsTotal     *prometheus.CounterVec
	ReconcilesTotal   prometheus.Counter
	ErrorsTotal       *prometheus.CounterVec
	DiscoveryAttempts prometheus.Histogram
	CommandDuration   *prometheus.HistogramVec
	CachedPlaylists   prometheus.Gauge
	LikedIndexSize    prometheus.Gauge
	ConnectedClients  prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunetime_commands_total",
				Help: "Total number of playback commands issued",
			},
			[]string{"command", "status"},
		),
		ReconcilesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tunetime_reconciles_total",
				Help: "Total number of state reconciliation passes",
			},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunetime_errors_total",
				Help: "Total number of errors",
			},
			[]string{"component", "type"},
		),
		DiscoveryAttempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tunetime_device_discovery_attempts",
				Help:    "Device polls needed before a device was found",
				Buckets: prometheus.LinearBuckets(1, 1, 8),
			},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tunetime_command_duration_seconds",
				Help:    "Time spent handling control commands",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		CachedPlaylists: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tunetime_cached_playlists",
				Help: "Number of playlists with cached track lists",
			},
		),
		LikedIndexSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tunetime_liked_index_size",
				Help: "Number of track ids in the liked index",
			},
		),
		ConnectedClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tunetime_connected_clients",
				Help: "Number of connected WebSocket clients",
			},
		),
	}

	prometheus.MustRegister(
		m.CommandsTotal,
		m.ReconcilesTotal,
		m.ErrorsTotal,
		m.DiscoveryAttempts,
		m.CommandDuration,
		m.CachedPlaylists,
		m.LikedIndexSize,
		m.ConnectedClients,
	)
	return m
}

func (m *Metrics) RecordCommand(command, status string, duration time.Duration) {
	m.CommandsTotal.WithLabelValues(command, status).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

func (m *Metrics) RecordError(component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
