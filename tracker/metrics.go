package tracker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"piebuild"
)

// Metrics is a Tracker that records build activity as Prometheus
// instruments, the counter/histogram analogue of the research pack's
// MetricsTracker Report (total_required_tasks, total_executed_tasks,
// total_required_tasks_up_to_date, build_duration).
type Metrics struct {
	registry *prometheus.Registry

	requiresTotal   *prometheus.CounterVec
	executionsTotal *prometheus.CounterVec
	scheduledTotal  *prometheus.CounterVec
	checksTotal     *prometheus.CounterVec
	buildDuration   prometheus.Histogram
	executeDuration *prometheus.HistogramVec

	buildStarted    time.Time
	executeStarted  map[piebuild.TaskKey]time.Time
}

// NewMetrics registers its instruments with registry and returns a ready
// Metrics tracker.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		requiresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "piebuild",
			Name:      "task_requires_total",
			Help:      "Total number of task require calls, by task kind.",
		}, []string{"kind"}),
		executionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "piebuild",
			Name:      "task_executions_total",
			Help:      "Total number of task executions, by task kind and outcome.",
		}, []string{"kind", "outcome"}),
		scheduledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "piebuild",
			Name:      "task_scheduled_total",
			Help:      "Total number of bottom-up schedule decisions, by task kind.",
		}, []string{"kind"}),
		checksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "piebuild",
			Name:      "consistency_checks_total",
			Help:      "Total number of consistency checks, by subject and result.",
		}, []string{"subject", "result"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "piebuild",
			Name:      "build_duration_seconds",
			Help:      "Wall-clock duration of a top-level build.",
			Buckets:   prometheus.DefBuckets,
		}),
		executeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "piebuild",
			Name:      "task_execute_duration_seconds",
			Help:      "Wall-clock duration of a single task execution, by task kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		executeStarted: make(map[piebuild.TaskKey]time.Time),
	}
	registry.MustRegister(
		m.requiresTotal,
		m.executionsTotal,
		m.scheduledTotal,
		m.checksTotal,
		m.buildDuration,
		m.executeDuration,
	)
	return m
}

var _ piebuild.Tracker = (*Metrics)(nil)

func (m *Metrics) BuildStart() {
	m.buildStarted = time.Now()
}

func (m *Metrics) BuildEnd() {
	if m.buildStarted.IsZero() {
		return
	}
	m.buildDuration.Observe(time.Since(m.buildStarted).Seconds())
}

func (m *Metrics) RequireStart(task piebuild.Task) {
	m.requiresTotal.WithLabelValues(task.Key().Kind).Inc()
}

func (m *Metrics) RequireEnd(piebuild.Task, any, error) {}

func (m *Metrics) ReadStart(piebuild.Resource)      {}
func (m *Metrics) ReadEnd(piebuild.Resource, error) {}

func (m *Metrics) WriteStart(piebuild.Resource)      {}
func (m *Metrics) WriteEnd(piebuild.Resource, error) {}

func (m *Metrics) CheckTaskStart(piebuild.Task) {}

func (m *Metrics) CheckTaskEnd(task piebuild.Task, inc *piebuild.Inconsistency, err error) {
	switch {
	case err != nil:
		m.checksTotal.WithLabelValues("task", "error").Inc()
	case inc != nil:
		m.checksTotal.WithLabelValues("task", "inconsistent").Inc()
	default:
		m.checksTotal.WithLabelValues("task", "consistent").Inc()
	}
	_ = task
}

func (m *Metrics) CheckResourceStart(piebuild.Resource) {}

func (m *Metrics) CheckResourceEnd(r piebuild.Resource, inc *piebuild.Inconsistency, err error) {
	switch {
	case err != nil:
		m.checksTotal.WithLabelValues("resource", "error").Inc()
	case inc != nil:
		m.checksTotal.WithLabelValues("resource", "inconsistent").Inc()
	default:
		m.checksTotal.WithLabelValues("resource", "consistent").Inc()
	}
	_ = r
}

func (m *Metrics) ExecuteStart(task piebuild.Task) {
	m.executeStarted[task.Key()] = time.Now()
}

func (m *Metrics) ExecuteEnd(task piebuild.Task, output any, err error) {
	key := task.Key()
	if start, ok := m.executeStarted[key]; ok {
		m.executeDuration.WithLabelValues(key.Kind).Observe(time.Since(start).Seconds())
		delete(m.executeStarted, key)
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.executionsTotal.WithLabelValues(key.Kind, outcome).Inc()
	_ = output
}

func (m *Metrics) ScheduleAffectedByResource(piebuild.Resource, []piebuild.Task) {}
func (m *Metrics) ScheduleAffectedByTask(piebuild.Task, []piebuild.Task)         {}

func (m *Metrics) ScheduleTask(task piebuild.Task) {
	m.scheduledTotal.WithLabelValues(task.Key().Kind).Inc()
}
