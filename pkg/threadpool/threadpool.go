package threadpool

import "github.com/pgvanniekerk/ezpool/job"

// ThreadPool defines the interface of a fixed-size pool of worker goroutines
// that execute submitted jobs.
//
// The set of workers is created once, when the pool is constructed, and is
// never resized. Jobs are fire-and-forget: the pool neither returns results nor
// supports cancelling a job once it has been submitted.
type ThreadPool interface {

	// Submit queues a job for execution and returns without waiting for it to
	// run. Exactly one worker will eventually run the job, exactly once.
	// Jobs submitted earlier are picked up no later than jobs submitted after
	// them, but jobs running on different workers may complete in any order.
	//
	// Returns:
	//   - ErrNilJob: if the job is nil.
	//   - ErrPoolClosed: if Close has already been called.
	Submit(job.Job) error

	// Size returns the number of workers in the pool.
	Size() int

	// Close shuts the pool down gracefully. Every job submitted before Close
	// was called runs to completion, then every worker exits. Close blocks
	// until no worker goroutine is left running.
	//
	// Close is idempotent; calls after the first return nil. Use it with defer
	// so the pool is torn down on every exit path:
	//
	//	pool, err := threadpool.New(4)
	//	if err != nil {
	//	    return err
	//	}
	//	defer pool.Close()
	Close() error
}
