package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	runDuration              *prometheus.HistogramVec
	plansTotal               prometheus.Counter
	assignmentsProposed      prometheus.Counter
	unassignableApplications prometheus.Counter
	unassignableSlots        prometheus.Counter
	movesProposed            prometheus.Counter
	staleSnapshotRetries     prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Counter) {
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "review_balancer_run_duration_seconds",
			Help:    "Duration of allocation and rebalance runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	plans := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_balancer_plans_total",
			Help: "Number of allocation plans produced",
		},
	)
	proposed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_balancer_assignments_proposed_total",
			Help: "Number of assignments proposed by allocation plans",
		},
	)
	unassignableApps := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_balancer_unassignable_applications_total",
			Help: "Number of applications left unassignable by allocation plans",
		},
	)
	unassignable := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_balancer_unassignable_slots_total",
			Help: "Number of review slots left unfilled by allocation plans",
		},
	)
	moves := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_balancer_moves_proposed_total",
			Help: "Number of moves proposed by rebalance runs",
		},
	)
	stale := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_balancer_stale_snapshot_retries_total",
			Help: "Number of plan applications rejected by a concurrent writer",
		},
	)
	return dur, plans, proposed, unassignableApps, unassignable, moves, stale
}

func init() {
	runDuration, plansTotal, assignmentsProposed, unassignableApplications, unassignableSlots, movesProposed, staleSnapshotRetries = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers balancer metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(runDuration, plansTotal, assignmentsProposed, unassignableApplications, unassignableSlots, movesProposed, staleSnapshotRetries)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	runDuration, plansTotal, assignmentsProposed, unassignableApplications, unassignableSlots, movesProposed, staleSnapshotRetries = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

// ObserveRun records the duration of one allocation or rebalance run.
func ObserveRun(operation string, start time.Time) {
	runDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// PlanProduced records one allocation plan and its outcome counts.
func PlanProduced(proposed, unassignableApps, unassignableSlotCount int) {
	plansTotal.Inc()
	assignmentsProposed.Add(float64(proposed))
	unassignableApplications.Add(float64(unassignableApps))
	unassignableSlots.Add(float64(unassignableSlotCount))
}

// MovesProposed records the moves of one rebalance run.
func MovesProposed(count int) {
	movesProposed.Add(float64(count))
}

// StaleSnapshotRetry records a plan application lost to a concurrent writer.
func StaleSnapshotRetry() {
	staleSnapshotRetries.Inc()
}
