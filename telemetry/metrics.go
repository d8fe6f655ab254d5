package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts witnessed requests by operation and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "basis_requests_total",
		Help: "Total witnessed requests by operation and HTTP status.",
	}, []string{"operation", "status"})

	// GateRejectionsTotal counts payment gate rejections by kind.
	GateRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "basis_gate_rejections_total",
		Help: "Total payment gate rejections by rejection kind.",
	}, []string{"kind"})
)
