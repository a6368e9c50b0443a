package threadpool

import (
	"github.com/sirupsen/logrus"
)

// PanicHandler is called by a worker after it recovers a panic raised by a job.
// It runs on the worker's goroutine, before the worker waits for its next job.
type PanicHandler func(workerID int, recovered any)

// options holds the optional settings of a Pool.
type options struct {
	id           string
	logger       logrus.FieldLogger
	metrics      *Metrics
	panicHandler PanicHandler
}

// Option customizes a Pool at construction time.
type Option func(*options)

// WithID sets the identifier attached to every log entry the pool emits.
// An empty id keeps the generated default.
func WithID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.id = id
		}
	}
}

// WithLogger sets the logger used by the pool and its workers.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus collectors to the pool.
func WithMetrics(metrics *Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WithPanicHandler registers a callback invoked whenever a job panics.
func WithPanicHandler(handler PanicHandler) Option {
	return func(o *options) {
		o.panicHandler = handler
	}
}
