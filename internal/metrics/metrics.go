package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all Prometheus metrics for the engine
type Registry struct {
	Classifications     *prometheus.CounterVec
	OverrideDowngrades  *prometheus.CounterVec
	EligibilityFailures *prometheus.CounterVec
	ParlayBuilds        *prometheus.CounterVec
	ParlayFailures      *prometheus.CounterVec
	BuildDuration       prometheus.Histogram
}

// NewRegistry creates the engine's metric set
func NewRegistry() *Registry {
	return &Registry{
		Classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharpline_classifications_total",
				Help: "Total classification evaluations by sport, market and outcome",
			},
			[]string{"sport", "market", "classification"},
		),

		OverrideDowngrades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharpline_override_downgrades_total",
				Help: "Total EDGE downgrades caused by situational overrides",
			},
			[]string{"sport"},
		),

		EligibilityFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharpline_eligibility_failures_total",
				Help: "Total Layer A admission failures by failing check",
			},
			[]string{"check"},
		),

		ParlayBuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharpline_parlay_builds_total",
				Help: "Total parlay build attempts by status and fallback step",
			},
			[]string{"status", "fallback_step"},
		),

		ParlayFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharpline_parlay_failures_total",
				Help: "Total failed parlay builds by reason code",
			},
			[]string{"reason"},
		),

		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sharpline_parlay_build_duration_seconds",
				Help:    "Duration of parlay ladder execution in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
		),
	}
}

// Register registers all metrics with the given Prometheus registerer
func (r *Registry) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		r.Classifications,
		r.OverrideDowngrades,
		r.EligibilityFailures,
		r.ParlayBuilds,
		r.ParlayFailures,
		r.BuildDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister registers with the default Prometheus registry
func (r *Registry) MustRegister() {
	if err := r.Register(prometheus.DefaultRegisterer); err != nil {
		panic(err)
	}
}
