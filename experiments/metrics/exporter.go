package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "banditlab"

// Exporter turns completed run metrics into Prometheus series on a private registry.
type Exporter struct {
	registry *prometheus.Registry
	steps    *prometheus.CounterVec
	pulls    *prometheus.CounterVec
	sweeps   *prometheus.CounterVec
	regret   *prometheus.GaugeVec
	duration *prometheus.HistogramVec
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bandit_steps_total",
			Help:      "Bandit steps simulated per strategy.",
		}, []string{"strategy"}),
		pulls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bandit_pulls_total",
			Help:      "Arm pulls per strategy and arm.",
		}, []string{"strategy", "arm"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mdp_sweeps_total",
			Help:      "Value table sweeps per solver.",
		}, []string{"solver"}),
		regret: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bandit_regret",
			Help:      "Mean regret per strategy over repeated runs.",
		}, []string{"strategy"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a simulation run or solver invocation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"label"}),
	}
	e.registry.MustRegister(e.steps, e.pulls, e.sweeps, e.regret, e.duration)
	return e
}

// Observe records a bandit run (Pulls set) or a solver run (Sweeps set).
func (e *Exporter) Observe(m RunMetric) {
	if m.Label == "" {
		return
	}
	if len(m.Pulls) > 0 {
		e.steps.WithLabelValues(m.Label).Add(float64(m.Steps))
		for arm, n := range m.Pulls {
			e.pulls.WithLabelValues(m.Label, strconv.Itoa(arm)).Add(float64(n))
		}
	}
	if m.Sweeps > 0 {
		e.sweeps.WithLabelValues(m.Label).Add(float64(m.Sweeps))
	}
	e.duration.WithLabelValues(m.Label).Observe(m.Duration.Seconds())
}

func (e *Exporter) SetRegret(strategy string, regret float64) {
	e.regret.WithLabelValues(strategy).Set(regret)
}

func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// WriteFile stores all series in the Prometheus text format.
func (e *Exporter) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
