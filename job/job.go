package job

// Job is a single unit of deferred work executed by a thread pool.
//
// A Job takes no arguments and returns nothing. Once submitted, it is owned by
// the pool: exactly one worker invokes it exactly once and then drops it. Jobs
// run concurrently with other jobs on other workers, so any state they share
// must be synchronized by the caller.
//
// A Job that panics does not take its worker down with it. The panic is
// recovered, logged and reported to the pool's panic handler, if any.
type Job func()
