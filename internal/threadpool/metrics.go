package threadpool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pgvanniekerk/ezpool/internal/queue"
)

// Metrics groups the Prometheus collectors a Pool reports to. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	JobsSubmitted prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsPanicked  prometheus.Counter
	JobsAborted   prometheus.Counter
	WorkersAlive  prometheus.Gauge
	QueueDepth    prometheus.Gauge
	JobDuration   prometheus.Histogram
}

// NewMetrics creates the pool collectors and registers them with reg. A nil
// reg leaves the collectors unregistered, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	m := &Metrics{
		JobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_submitted_total",
			Help:      "Total number of jobs submitted to the pool",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_completed_total",
			Help:      "Total number of jobs that ran to completion",
		}),
		JobsPanicked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_panicked_total",
			Help:      "Total number of jobs that panicked",
		}),
		JobsAborted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_aborted_total",
			Help:      "Total number of jobs that ended their worker goroutine without returning",
		}),
		WorkersAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workers_alive",
			Help:      "Current number of running worker goroutines",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_depth",
			Help:      "Number of messages waiting in the job queue",
		}),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "job_duration_seconds",
			Help:      "Histogram of job execution time",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.JobsSubmitted,
			m.JobsCompleted,
			m.JobsPanicked,
			m.JobsAborted,
			m.WorkersAlive,
			m.QueueDepth,
			m.JobDuration,
		)
	}

	return m
}

func (m *Metrics) jobSubmitted(q *queue.Queue) {
	if m == nil {
		return
	}
	m.JobsSubmitted.Inc()
	m.QueueDepth.Set(float64(q.Len()))
}

func (m *Metrics) jobDequeued(q *queue.Queue) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(q.Len()))
}

// outcome is how a job left its worker.
type outcome uint8

const (
	outcomeCompleted outcome = iota
	outcomePanicked
	outcomeAborted
)

func (m *Metrics) jobFinished(elapsed time.Duration, o outcome) {
	if m == nil {
		return
	}
	m.JobDuration.Observe(elapsed.Seconds())
	switch o {
	case outcomePanicked:
		m.JobsPanicked.Inc()
	case outcomeAborted:
		m.JobsAborted.Inc()
	default:
		m.JobsCompleted.Inc()
	}
}

func (m *Metrics) workerStarted() {
	if m == nil {
		return
	}
	m.WorkersAlive.Inc()
}

func (m *Metrics) workerStopped() {
	if m == nil {
		return
	}
	m.WorkersAlive.Dec()
}
