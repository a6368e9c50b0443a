package threadpool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pgvanniekerk/ezpool/internal/queue"
	"github.com/pgvanniekerk/ezpool/job"
)

// Pool is a fixed-size thread pool. It owns a set of long-lived worker
// goroutines and the producer side of the queue they consume jobs from.
// The number of workers is fixed at construction and stays constant until
// Close is called, at which point queued jobs are drained and every worker is
// joined before Close returns.
type Pool struct {

	// id identifies the pool in log entries.
	id string

	// size is the number of workers, always at least 1.
	size int

	// queue carries work and terminate messages from the pool to its workers.
	queue *queue.Queue

	// workers holds every worker spawned by New, ordered by id. It is only
	// read by Close, which joins each worker exactly once.
	workers []*worker

	// group runs the worker goroutines.
	group *errgroup.Group

	// closed is set once Close has begun. Submit refuses jobs from then on.
	closed *atomic.Bool

	// submitMutex orders Submit against the start of Close, so that a job
	// accepted by Submit is always queued ahead of the terminate messages.
	submitMutex *sync.RWMutex

	// closeMutex ensures Close runs its shutdown sequence at most once and
	// that concurrent callers return only after shutdown has completed.
	closeMutex *sync.Mutex

	logger  logrus.FieldLogger
	metrics *Metrics
}

//region Implementation

// Submit queues j for execution and returns immediately. Exactly one worker
// will eventually run j exactly once. Submit does not wait for j to run and
// reports nothing about its outcome.
//
// Submit returns ErrNilJob if j is nil and ErrPoolClosed if Close has
// already been called.
func (p *Pool) Submit(j job.Job) error {
	if j == nil {
		return ErrNilJob
	}

	p.submitMutex.RLock()
	defer p.submitMutex.RUnlock()

	if p.isClosed() {
		return ErrPoolClosed
	}

	if err := p.queue.Send(queue.Work(j)); err != nil {
		return fmt.Errorf("submitting job: %w", err)
	}
	p.metrics.jobSubmitted(p.queue)

	return nil
}

// Close shuts the pool down gracefully. It sends one terminate message per
// worker, then waits for each worker in turn to exit. Because the queue is
// FIFO, every job submitted before Close began runs before the terminate
// messages are consumed.
//
// When Close returns no worker goroutine is running. It returns the joined
// errors of every worker that ended abnormally, such as ErrWorkerExited.
// Close is idempotent: later calls return nil.
func (p *Pool) Close() error {
	p.closeMutex.Lock()
	defer p.closeMutex.Unlock()

	// Ensure p is not already closed.
	if p.isClosed() {
		return nil
	}

	// Stop accepting jobs. Taking the write lock waits out any Submit that is
	// already past its closed check.
	p.submitMutex.Lock()
	p.closed.Store(true)
	p.submitMutex.Unlock()

	// A failed send means the queue was closed underneath the workers, which
	// also makes each of them exit, so joining below still completes.
	var sendErr error
	p.logger.Info("sending terminate message to all workers")
	for range p.workers {
		if err := p.queue.Send(queue.Terminate()); err != nil {
			sendErr = fmt.Errorf("sending terminate message: %w", err)
			break
		}
	}

	errs := []error{sendErr}
	p.logger.Info("shutting down all workers")
	for _, w := range p.workers {
		errs = append(errs, w.join())
		w.logger.Debug("worker shut down")
	}

	// Each worker's error was collected by join; Wait only reports the first.
	_ = p.group.Wait()

	err := errors.Join(errs...)

	// Every worker has exited, so the producer side can be dropped.
	p.queue.Close()
	p.workers = nil

	if err != nil {
		p.logger.WithError(err).Error("thread pool stopped with errors")
		return err
	}

	p.logger.Info("thread pool stopped")
	return nil
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return p.size
}

// ID returns the identifier the pool logs under.
func (p *Pool) ID() string {
	return p.id
}

//endregion

//region Helpers

// isClosed reports whether Close has begun.
func (p *Pool) isClosed() bool {
	return p.closed.Load()
}

//endregion

//region Constructor

// New creates a pool of size workers and returns once all of them are running
// and parked waiting for work. It returns ErrInvalidSize if size is less than
// 1, in which case nothing is started.
func New(size int, opts ...Option) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}

	o := &options{
		id:     uuid.NewString(),
		logger: logrus.StandardLogger(),
	}
	for idx := range opts {
		opts[idx](o)
	}

	logger := o.logger.WithFields(logrus.Fields{
		"pool": o.id,
		"size": size,
	})

	p := &Pool{
		id:          o.id,
		size:        size,
		queue:       queue.New(),
		workers:     make([]*worker, 0, size),
		group:       &errgroup.Group{},
		closed:      &atomic.Bool{},
		submitMutex: &sync.RWMutex{},
		closeMutex:  &sync.Mutex{},
		logger:      logger,
		metrics:     o.metrics,
	}

	ready := &sync.WaitGroup{}
	ready.Add(size)
	for id := 0; id < size; id++ {
		w := newWorker(id, p.queue, o, logger)
		p.workers = append(p.workers, w)
		p.group.Go(func() error {
			return w.run(ready)
		})
	}
	ready.Wait()

	logger.Info("thread pool started")

	return p, nil
}

// MustNew is like New but panics if the pool cannot be created.
func MustNew(size int, opts ...Option) *Pool {
	p, err := New(size, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

//endregion
