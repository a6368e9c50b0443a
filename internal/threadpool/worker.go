package threadpool

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pgvanniekerk/ezpool/internal/queue"
	"github.com/pgvanniekerk/ezpool/job"
)

// State is the lifecycle state of a worker.
type State int32

const (
	// StateRunning is entered when the worker goroutine starts.
	StateRunning State = iota

	// StateTerminated is entered once the worker has left its receive loop.
	// It is final.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// worker owns one goroutine that pulls messages off the shared queue until it
// is told to terminate.
type worker struct {

	// id identifies the worker in logs. It plays no part in routing.
	id int

	// queue is shared by every worker of the pool. Receive serializes them.
	queue *queue.Queue

	// state holds the current State.
	state *atomic.Int32

	// done is closed when the worker goroutine returns. Receiving from it is
	// how the pool joins the worker.
	done chan struct{}

	// err records what ended the worker, if it did not exit on a terminate
	// message. It is written before done is closed.
	err error

	logger       logrus.FieldLogger
	metrics      *Metrics
	panicHandler PanicHandler
}

//region Implementation

// run is the body of the worker goroutine. It signals ready once the worker is
// live, then loops until it consumes a terminate message. A failed Receive is
// fatal to the worker. Whatever ends the worker abnormally is kept in err.
func (w *worker) run(ready *sync.WaitGroup) error {
	defer close(w.done)
	defer w.metrics.workerStopped()
	defer w.state.Store(int32(StateTerminated))

	w.metrics.workerStarted()
	ready.Done()

	w.err = w.loop()
	return w.err
}

func (w *worker) loop() error {
	for {
		msg, err := w.queue.Receive()
		if err != nil {
			w.logger.WithError(err).Error("worker failed to receive a message; exiting")
			return fmt.Errorf("worker %d: %w", w.id, err)
		}
		w.metrics.jobDequeued(w.queue)

		switch msg.Kind {
		case queue.KindWork:
			w.logger.Debug("worker got a job; executing")
			w.execute(msg.Job)

		case queue.KindTerminate:
			w.logger.Debug("worker was told to terminate")
			return nil

		default:
			return fmt.Errorf("worker %d: unexpected message kind %s", w.id, msg.Kind)
		}
	}
}

// execute runs j to completion on the worker goroutine. A panic raised by j
// is recovered so the worker survives it. A job that stops the goroutine with
// runtime.Goexit cannot be survived; it is recorded in err before the
// goroutine unwinds.
func (w *worker) execute(j job.Job) {
	start := time.Now()
	finished := false

	defer func() {
		r := recover()
		elapsed := time.Since(start)

		switch {
		case finished:
			w.metrics.jobFinished(elapsed, outcomeCompleted)

		case r == nil:
			w.metrics.jobFinished(elapsed, outcomeAborted)
			w.err = fmt.Errorf("worker %d: %w", w.id, ErrWorkerExited)
			w.logger.Error("job stopped its worker goroutine; worker exits")

		default:
			w.metrics.jobFinished(elapsed, outcomePanicked)
			w.logger.WithFields(logrus.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("job panicked")
			w.handlePanic(r)
		}
	}()

	j()
	finished = true
}

// handlePanic passes r to the panic handler. A panic raised by the handler
// itself is logged and dropped.
func (w *worker) handlePanic(r any) {
	if w.panicHandler == nil {
		return
	}

	defer func() {
		if hr := recover(); hr != nil {
			w.logger.WithField("panic", hr).Error("panic handler panicked")
		}
	}()

	w.panicHandler(w.id, r)
}

// join blocks until the worker goroutine has returned and reports the error,
// if any, that ended it.
func (w *worker) join() error {
	<-w.done
	return w.err
}

//endregion

//region Constructor

func newWorker(id int, q *queue.Queue, o *options, logger logrus.FieldLogger) *worker {
	state := &atomic.Int32{}
	state.Store(int32(StateRunning))

	return &worker{
		id:           id,
		queue:        q,
		state:        state,
		done:         make(chan struct{}),
		logger:       logger.WithField("worker", id),
		metrics:      o.metrics,
		panicHandler: o.panicHandler,
	}
}

//endregion
