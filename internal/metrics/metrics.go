// Package metrics records what the migrator does to a database: one step per
// unit executed and running totals of applied, rolled back and skipped units.
//
// Callers depend only on the Backend interface. The process-wide backend
// defaults to a no-op so instrumentation is always safe to call; concrete
// systems (Prometheus Pushgateway, DogStatsD) live in subpackages and are
// installed once at start-up with SetBackend.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by this package.
const (
	UnitTotal           = "migrate_unit_total"
	UnitDurationSeconds = "migrate_unit_duration_seconds"
	UnitsTotal          = "migrate_units_total"
)

// Unit kinds counted by RecordUnits.
const (
	KindApplied    = "applied"
	KindRolledBack = "rolled_back"
	KindSkipped    = "skipped"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of a migration unit in the given
// direction ("up" or "down") and observes how long it took.
func RecordStep(job, unit, direction string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":       job,
		"unit":      unit,
		"direction": direction,
		"status":    status,
	}

	b := current()
	b.IncCounter(UnitTotal, 1, lbls)
	b.ObserveHistogram(UnitDurationSeconds, d.Seconds(), lbls)
}

// RecordUnits adds delta to the per-kind unit total. Kinds are KindApplied,
// KindRolledBack and KindSkipped; non-positive deltas are ignored.
func RecordUnits(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(UnitsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
