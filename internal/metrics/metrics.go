// Package metrics exposes Prometheus collectors describing selection passes
// and network execution. Collectors live on their own registry so several
// filters in one process do not collide.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeUnique    = "unique"
	OutcomeAmbiguous = "ambiguous"
	OutcomeFailed    = "failed"
	OutcomeSucceeded = "succeeded"
)

// Collector groups the selx collectors. A nil *Collector is valid and
// records nothing.
type Collector struct {
	registry *prometheus.Registry

	// Resolutions counts configure passes by outcome.
	Resolutions *prometheus.CounterVec
	// HandshakeIterations observes how many fixed-point rounds a pass needed.
	HandshakeIterations prometheus.Histogram
	// Candidates tracks the surviving candidates per node after each stage.
	Candidates *prometheus.GaugeVec
	// Executions counts network executions by outcome.
	Executions *prometheus.CounterVec
	// UpdateSeconds observes the duration of component updates.
	UpdateSeconds *prometheus.HistogramVec
}

// New creates a Collector registered on a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "selx_resolutions_total",
				Help: "Total number of component selection passes",
			},
			[]string{"outcome"},
		),
		HandshakeIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "selx_handshake_iterations",
				Help:    "Fixed-point rounds needed by the connection handshake",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
		),
		Candidates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "selx_candidates",
				Help: "Surviving candidates per blueprint component after a selection stage",
			},
			[]string{"component", "stage"},
		),
		Executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "selx_executions_total",
				Help: "Total number of network executions",
			},
			[]string{"outcome"},
		),
		UpdateSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "selx_update_seconds",
				Help:    "Duration of component updates",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"component", "class"},
		),
	}
	c.registry.MustRegister(c.Resolutions, c.HandshakeIterations, c.Candidates, c.Executions, c.UpdateSeconds)
	return c
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Resolved records the outcome of a configure pass.
func (c *Collector) Resolved(outcome string, iterations int) {
	if c == nil {
		return
	}
	c.Resolutions.WithLabelValues(outcome).Inc()
	if iterations > 0 {
		c.HandshakeIterations.Observe(float64(iterations))
	}
}

// CandidatesLeft records the candidate count of a component after stage.
func (c *Collector) CandidatesLeft(component, stage string, n int) {
	if c == nil {
		return
	}
	c.Candidates.WithLabelValues(component, stage).Set(float64(n))
}

// Executed records a network execution.
func (c *Collector) Executed(outcome string) {
	if c == nil {
		return
	}
	c.Executions.WithLabelValues(outcome).Inc()
}

// Updated records the duration of one component update.
func (c *Collector) Updated(component, class string, d time.Duration) {
	if c == nil {
		return
	}
	c.UpdateSeconds.WithLabelValues(component, class).Observe(d.Seconds())
}

// WriteTextfile writes the current metrics in the node_exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
