package scheduler

import "github.com/prometheus/client_golang/prometheus"

var (
	tasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localmind",
			Subsystem: "scheduler",
			Name:      "tasks_total",
			Help:      "Resolved tasks by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	taskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "localmind",
			Subsystem: "scheduler",
			Name:      "task_duration_seconds",
			Help:      "Task execution time in seconds",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"category"},
	)

	taskWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "localmind",
			Subsystem: "scheduler",
			Name:      "task_wait_seconds",
			Help:      "Time tasks spend pending before dispatch",
			Buckets:   []float64{.001, .01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"category"},
	)

	pendingGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "localmind",
			Subsystem: "scheduler",
			Name:      "pending_tasks",
			Help:      "Tasks waiting for a worker or a free ceiling slot",
		},
	)

	activeGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "localmind",
			Subsystem: "scheduler",
			Name:      "active_tasks",
			Help:      "Tasks currently executing",
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(tasksTotal, taskDuration, taskWait, pendingGauge, activeGauge)
}

// outcome labels
const (
	outcomeCompleted = "completed"
	outcomeFailed    = "failed"
	outcomeCancelled = "cancelled"
	outcomeTimeout   = "timeout"
	outcomeRejected  = "rejected"
	outcomeDisposed  = "disposed"
)
