package main

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/pgvanniekerk/ezpool/internal/config"
	"github.com/pgvanniekerk/ezpool/job"
	"github.com/pgvanniekerk/ezpool/pkg/threadpool"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// recordingPool is a ThreadPool that runs jobs one by one on its own
// goroutine and records the largest number of jobs it held at once.
type recordingPool struct {
	mu          sync.Mutex
	outstanding int
	highWater   int

	jobs    chan job.Job
	start   chan struct{}
	drained chan struct{}
}

func newRecordingPool(capacity int) *recordingPool {
	p := &recordingPool{
		jobs:    make(chan job.Job, capacity),
		start:   make(chan struct{}),
		drained: make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *recordingPool) run() {
	defer close(p.drained)
	<-p.start
	for j := range p.jobs {
		time.Sleep(time.Millisecond)
		p.mu.Lock()
		p.outstanding--
		p.mu.Unlock()
		j()
	}
}

// release lets the pool start running the jobs it holds.
func (p *recordingPool) release() {
	close(p.start)
}

func (p *recordingPool) Submit(j job.Job) error {
	p.mu.Lock()
	p.outstanding++
	if p.outstanding > p.highWater {
		p.highWater = p.outstanding
	}
	p.mu.Unlock()

	p.jobs <- j
	return nil
}

func (p *recordingPool) Size() int {
	return 1
}

func (p *recordingPool) Close() error {
	close(p.jobs)
	<-p.drained
	return nil
}

func (p *recordingPool) peak() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.highWater
}

func TestSubmitJobs_BoundedInFlight(t *testing.T) {
	logger := discardLogger()
	pool := newRecordingPool(25)
	pool.release()

	cfg := config.Default()
	cfg.Jobs = 25
	cfg.JobDuration = "0s"
	cfg.MaxInFlight = 3

	submitted, err := submitJobs(context.Background(), pool, cfg, logger)
	require.NoError(t, err)
	require.Equal(t, 25, submitted)
	require.NoError(t, pool.Close())

	require.Positive(t, pool.peak())
	require.LessOrEqual(t, pool.peak(), 3)
}

func TestSubmitJobs_UnboundedInFlight(t *testing.T) {
	logger := discardLogger()
	pool := newRecordingPool(25)

	cfg := config.Default()
	cfg.Jobs = 25
	cfg.JobDuration = "0s"
	cfg.MaxInFlight = 0

	submitted, err := submitJobs(context.Background(), pool, cfg, logger)
	require.NoError(t, err)
	require.Equal(t, 25, submitted)

	pool.release()
	require.NoError(t, pool.Close())

	require.Equal(t, 25, pool.peak())
}

func TestSubmitJobs_RealPool(t *testing.T) {
	logger := discardLogger()
	pool := threadpool.MustNew(2, threadpool.WithLogger(logger))

	cfg := config.Default()
	cfg.Jobs = 25
	cfg.JobDuration = "1ms"
	cfg.MaxInFlight = 3

	submitted, err := submitJobs(context.Background(), pool, cfg, logger)
	require.NoError(t, err)
	require.Equal(t, 25, submitted)
	require.NoError(t, pool.Close())
}

func TestSubmitJobs_StopsOnCancel(t *testing.T) {
	logger := discardLogger()
	pool := threadpool.MustNew(1, threadpool.WithLogger(logger))
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.Default()
	cfg.Jobs = 10

	submitted, err := submitJobs(ctx, pool, cfg, logger)
	require.NoError(t, err)
	require.Zero(t, submitted)
}

func TestSubmitJobs_ClosedPool(t *testing.T) {
	logger := discardLogger()
	pool := threadpool.MustNew(1, threadpool.WithLogger(logger))
	require.NoError(t, pool.Close())

	cfg := config.Default()
	cfg.Jobs = 1
	cfg.MaxInFlight = 1

	_, err := submitJobs(context.Background(), pool, cfg, logger)
	require.ErrorIs(t, err, threadpool.ErrPoolClosed)
}
