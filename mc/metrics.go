package mc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the driver counters, shared by every worker of a run.
type Metrics struct {
	proposed *prometheus.CounterVec
	accepted *prometheus.CounterVec
	measured *prometheus.CounterVec
	sign     *prometheus.GaugeVec
}

// NewMetrics registers the driver metrics on reg.
// Registering twice on the same registerer panics, as promauto does.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		proposed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cthyb_move_proposed_total",
			Help: "Number of proposed Monte Carlo moves",
		}, []string{"move"}),
		accepted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cthyb_move_accepted_total",
			Help: "Number of accepted Monte Carlo moves",
		}, []string{"move"}),
		measured: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cthyb_measurements_total",
			Help: "Number of measurement events",
		}, []string{"measure"}),
		sign: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cthyb_average_sign",
			Help: "Average Monte Carlo sign of the sampling phase",
		}, []string{"worker"}),
	}
}
