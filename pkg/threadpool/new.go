package threadpool

import (
	"github.com/sirupsen/logrus"

	"github.com/pgvanniekerk/ezpool/internal/threadpool"
)

var (
	// ErrInvalidSize is returned by New when size is less than 1.
	ErrInvalidSize = threadpool.ErrInvalidSize

	// ErrNilJob is returned by Submit when the job is nil.
	ErrNilJob = threadpool.ErrNilJob

	// ErrPoolClosed is returned by Submit after Close has been called.
	ErrPoolClosed = threadpool.ErrPoolClosed

	// ErrWorkerExited is returned (wrapped) by Close when a job ended its
	// worker goroutine, for instance by calling runtime.Goexit.
	ErrWorkerExited = threadpool.ErrWorkerExited
)

// Option customizes a ThreadPool at construction time.
type Option = threadpool.Option

// Metrics groups the Prometheus collectors a ThreadPool reports to.
type Metrics = threadpool.Metrics

// PanicHandler is invoked on the worker's goroutine after a job panics.
type PanicHandler = threadpool.PanicHandler

// NewMetrics creates pool collectors and registers them with reg, unless reg
// is nil.
var NewMetrics = threadpool.NewMetrics

// WithID sets the identifier the pool attaches to its log entries. By default
// each pool gets a random UUID.
func WithID(id string) Option {
	return threadpool.WithID(id)
}

// WithLogger sets the logger used by the pool and its workers. By default the
// logrus standard logger is used.
func WithLogger(logger logrus.FieldLogger) Option {
	return threadpool.WithLogger(logger)
}

// WithMetrics makes the pool report to the given collectors.
func WithMetrics(metrics *Metrics) Option {
	return threadpool.WithMetrics(metrics)
}

// WithPanicHandler registers a callback invoked whenever a job panics. The
// worker that ran the job recovers the panic and keeps serving jobs. A panic
// raised by the handler itself is logged and dropped.
func WithPanicHandler(handler PanicHandler) Option {
	return threadpool.WithPanicHandler(handler)
}

// New creates a ThreadPool with size workers. All workers are running and
// waiting for jobs by the time New returns.
//
// Arguments:
//   - size (int): Number of worker goroutines. Must be at least 1.
//   - opts: Optional settings such as WithLogger or WithMetrics.
//
// Returns:
//   - ThreadPool: The running pool.
//   - error: ErrInvalidSize (wrapped) if size is less than 1. No goroutine is
//     started in that case.
//
// Usage Example:
//
//	pool, err := threadpool.New(3)
//	if err != nil {
//	    log.Fatalf("Failed to create ThreadPool: %v", err)
//	}
//	defer pool.Close()
//
//	for i := 0; i < 5; i++ {
//	    _ = pool.Submit(func() {
//	        fmt.Printf("Processing job: %d\n", i)
//	    })
//	}
func New(size int, opts ...Option) (ThreadPool, error) {
	p, err := threadpool.New(size, opts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// MustNew is like New but panics if size is less than 1.
func MustNew(size int, opts ...Option) ThreadPool {
	return threadpool.MustNew(size, opts...)
}
