package threadpool

import "errors"

// ErrInvalidSize is returned by New when asked for a pool with fewer than one
// worker. No worker goroutine is started in that case.
var ErrInvalidSize = errors.New("thread pool size must be greater than 0")

// ErrNilJob is returned by Submit when the job is nil.
var ErrNilJob = errors.New("cannot submit a nil job")

// ErrPoolClosed is returned by Submit once Close has been called on the pool.
var ErrPoolClosed = errors.New("thread pool has been closed")

// ErrWorkerExited is reported by Close for each worker whose goroutine was
// stopped by a job (for example through runtime.Goexit) instead of by a
// terminate message. Jobs still queued behind it may not have run.
var ErrWorkerExited = errors.New("worker goroutine exited while running a job")
