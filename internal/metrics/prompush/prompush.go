// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Migration runs are short-lived batch jobs, so instead of exposing a scrape
// endpoint the backend collects into a private registry and pushes it to a
// Pushgateway on Flush. The Pushgateway "job" grouping key carries the job
// label; unit, direction and status become Prometheus labels.
package prompush

import (
	"fmt"

	"migrator/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultJob is the Pushgateway job used when none is configured.
const DefaultJob = "migrate"

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string
	reg        *prometheus.Registry

	unitCounter  *prometheus.CounterVec // migrate_unit_total
	unitDuration *prometheus.SummaryVec // migrate_unit_duration_seconds
	unitsCounter *prometheus.CounterVec // migrate_units_total
}

var stepLabels = []string{"unit", "direction", "status"}

// NewBackend constructs a Prometheus Pushgateway backend.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = DefaultJob
	}

	reg := prometheus.NewRegistry()

	unitCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.UnitTotal,
			Help: "Migration unit executions, partitioned by unit, direction and status.",
		},
		stepLabels,
	)
	unitDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.UnitDurationSeconds,
			Help:       "Duration of migration units in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		stepLabels,
	)
	unitsCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.UnitsTotal,
			Help: "Units per outcome kind (applied, rolled_back, skipped).",
		},
		[]string{"kind"},
	)

	for _, c := range []struct {
		what string
		c    prometheus.Collector
	}{
		{"unit counter", unitCounter},
		{"unit summary", unitDuration},
		{"units counter", unitsCounter},
	} {
		if err := reg.Register(c.c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", c.what, err)
		}
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		unitCounter:  unitCounter,
		unitDuration: unitDuration,
		unitsCounter: unitsCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.UnitTotal:
		if b.unitCounter == nil {
			return
		}
		b.unitCounter.WithLabelValues(labels["unit"], labels["direction"], labels["status"]).Add(delta)

	case metrics.UnitsTotal:
		if b.unitsCounter == nil {
			return
		}
		b.unitsCounter.WithLabelValues(labels["kind"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.UnitDurationSeconds || b.unitDuration == nil {
		return
	}
	b.unitDuration.WithLabelValues(labels["unit"], labels["direction"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
