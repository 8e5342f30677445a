package internal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scheduler and render pass metrics
var (
	schedulerTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiber_scheduler_tasks_total",
		Help: "Scheduler task callbacks invoked",
	}, []string{"priority"})

	schedulerYields = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiber_scheduler_yields_total",
		Help: "Times the scheduler gave control back to the host loop with work left",
	})

	schedulerCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiber_scheduler_cancelled_total",
		Help: "Cancelled tasks skipped by the work loop",
	})

	renderPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiber_render_passes_total",
		Help: "Render passes by outcome",
	}, []string{"result"})

	unitsOfWork = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiber_units_of_work_total",
		Help: "Work nodes begun",
	})

	commitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fiber_commit_duration_seconds",
		Help:    "Time to apply a finished tree to the host",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})
)
