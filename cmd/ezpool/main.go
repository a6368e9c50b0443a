// Package main runs a thread pool against a batch of demo jobs. It is meant
// for trying pool settings out and for watching the pool's metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/pgvanniekerk/ezpool/internal/config"
	"github.com/pgvanniekerk/ezpool/internal/logging"
	"github.com/pgvanniekerk/ezpool/pkg/threadpool"
)

func main() {
	var (
		configFile = flag.String("config", "", "config file path (YAML/JSON)")
		envFile    = flag.String("env", ".env", "env file loaded before reading EZPOOL_* variables")
	)
	flag.Parse()

	if err := run(*configFile, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "ezpool: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, envFile string) error {
	cfg, err := config.Load(configFile, envFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	metrics := threadpool.NewMetrics(reg, cfg.Metrics.Namespace, cfg.Metrics.Subsystem)

	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	pool, err := threadpool.New(cfg.Workers,
		threadpool.WithID(cfg.ID),
		threadpool.WithLogger(logger),
		threadpool.WithMetrics(metrics),
		threadpool.WithPanicHandler(func(workerID int, recovered any) {
			logger.WithField("worker", workerID).Warnf("demo job panicked: %v", recovered)
		}),
	)
	if err != nil {
		return err
	}

	submitted, submitErr := submitJobs(ctx, pool, cfg, logger)

	// Close drains whatever was submitted, even after an interrupt.
	closeErr := pool.Close()

	logger.WithField("submitted", submitted).Info("all submitted jobs finished")

	return errors.Join(submitErr, closeErr)
}

// submitJobs submits cfg.Jobs demo jobs. When cfg.MaxInFlight is set, no more
// than that many jobs are queued or running at any time. Submission stops
// early if ctx is cancelled.
func submitJobs(ctx context.Context, pool threadpool.ThreadPool, cfg *config.Config, logger logrus.FieldLogger) (int, error) {
	delay, err := cfg.JobDelay()
	if err != nil {
		return 0, err
	}

	var sem *semaphore.Weighted
	if cfg.MaxInFlight > 0 {
		sem = semaphore.NewWeighted(cfg.MaxInFlight)
	}

	submitted := 0
	for i := 0; i < cfg.Jobs; i++ {
		if sem != nil {
			if err := sem.Acquire(ctx, 1); err != nil {
				logger.WithError(err).Warn("stopped submitting jobs")
				return submitted, nil
			}
		} else if ctx.Err() != nil {
			logger.WithError(ctx.Err()).Warn("stopped submitting jobs")
			return submitted, nil
		}

		i := i
		err := pool.Submit(func() {
			if sem != nil {
				defer sem.Release(1)
			}
			time.Sleep(delay)
			logger.WithField("job", i).Debug("job done")
		})
		if err != nil {
			if sem != nil {
				sem.Release(1)
			}
			return submitted, fmt.Errorf("submitting job %d: %w", i, err)
		}
		submitted++
	}

	return submitted, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger logrus.FieldLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server failed")
		}
	}()

	return srv
}
