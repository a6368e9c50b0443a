// Package threadpool provides a fixed-size pool of worker goroutines that run
// fire-and-forget jobs.
//
// # Overview
//
// A ThreadPool decouples submitting work from executing it. The pool starts a
// fixed number of long-lived workers when it is created. Each call to Submit
// places a job on a shared FIFO queue, and whichever idle worker reaches the
// queue first takes the job and runs it. Close drains the queue and stops
// every worker before returning.
//
// Key properties:
//   - The number of workers is fixed for the lifetime of the pool
//   - Submit never waits for a job to run
//   - Every submitted job runs exactly once, on exactly one worker
//   - Jobs are dequeued in submission order; completion order across workers
//     is not guaranteed
//   - Close waits for queued and running jobs, then joins every worker
//   - A panicking job is recovered and logged; its worker keeps running
//
// # Basic Usage
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//		"sync/atomic"
//
//		"github.com/pgvanniekerk/ezpool/pkg/threadpool"
//	)
//
//	func main() {
//		pool, err := threadpool.New(3)
//		if err != nil {
//			log.Fatalf("creating pool: %v", err)
//		}
//
//		var done atomic.Int64
//		for i := 0; i < 5; i++ {
//			if err := pool.Submit(func() { done.Add(1) }); err != nil {
//				log.Printf("submit failed: %v", err)
//			}
//		}
//
//		// Close blocks until all five jobs have run.
//		if err := pool.Close(); err != nil {
//			log.Printf("close: %v", err)
//		}
//		fmt.Println(done.Load())
//	}
//
// # Shutdown
//
// Go has no destructors, so the pool must be closed explicitly; defer
// pool.Close() right after construction is the usual pattern. Close sends one
// terminate signal per worker behind any work already queued, so queued jobs
// always run before the workers exit. Submit returns ErrPoolClosed once Close
// has been called.
//
// # Panics
//
// A job that panics does not take its worker down. The worker recovers the
// panic, logs it at error level together with the stack trace, increments the
// jobs_panicked_total metric and calls the handler registered with
// WithPanicHandler, if any. The submitter is not otherwise notified. A panic
// raised by the handler is recovered and logged as well.
//
// A job that calls runtime.Goexit cannot be recovered from: its worker exits
// and the jobs queued behind it are left to the remaining workers. The job is
// counted in jobs_aborted_total and Close reports ErrWorkerExited for that
// worker. With a single worker the rest of the queue never runs.
//
// A job that never returns occupies its worker for good and lowers the
// effective concurrency of the pool by one. Close will then block forever, as
// the pool does not support timeouts or cancellation.
//
// # Logging and Metrics
//
// Pools log through logrus. Pass WithLogger to route entries elsewhere; every
// entry carries the pool id and, for worker entries, the worker id. Pass
// WithMetrics with collectors from NewMetrics to export Prometheus counters
// for submitted, completed, panicked and aborted jobs, a job duration histogram, the
// queue depth and the number of live workers.
package threadpool
