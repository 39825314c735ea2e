// Package metrics exposes prometheus counters for workout activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "workouts",
		Name:      "created_total",
		Help:      "Workouts created from a validated form submission.",
	}, []string{"kind"})
	validationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "workouts",
		Name:      "validation_failures_total",
		Help:      "Form submissions rejected by validation.",
	})
	persistOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "persistence",
		Name:      "writes_total",
		Help:      "Whole-collection writes to the key-value store by outcome.",
	}, []string{"outcome"})
	restoredWorkouts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mapty",
		Subsystem: "persistence",
		Name:      "restored_workouts",
		Help:      "Number of workouts restored from storage at startup.",
	})
)

func init() {
	prometheus.MustRegister(workoutsCreated, validationFailures, persistOutcomes, restoredWorkouts)
}

// RecordWorkoutCreated counts a new workout of the given kind.
func RecordWorkoutCreated(kind string) {
	workoutsCreated.WithLabelValues(kind).Inc()
}

// RecordValidationFailure counts a rejected submission.
func RecordValidationFailure() {
	validationFailures.Inc()
}

// RecordPersist counts a store write.
func RecordPersist(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	persistOutcomes.WithLabelValues(outcome).Inc()
}

// RecordRestored sets the restored workout gauge.
func RecordRestored(n int) {
	restoredWorkouts.Set(float64(n))
}
