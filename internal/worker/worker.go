package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"basegraph.app/siemd/common/logger"
)

type Config struct {
	LogDir            string
	PollInterval      time.Duration
	BatchSize         int
	MaxBatchesPerFile int
}

// Worker runs a scan pass over the log root right away and then once per
// poll interval until stopped.
type Worker struct {
	ingester Ingester
	cfg      Config

	stopOnce  sync.Once
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(ingester Ingester, cfg Config) *Worker {
	return &Worker{
		ingester:  ingester,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run blocks until Stop is called or ctx is done. A pass in progress sees a
// cancelled context and returns after its current batch.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "siemd.worker.ingest",
	})
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "ingest worker started",
		"log_dir", w.cfg.LogDir,
		"poll_interval", w.cfg.PollInterval,
		"batch_size", w.cfg.BatchSize,
		"max_batches_per_file", w.cfg.MaxBatchesPerFile)

	for {
		if err := w.runPassSafe(ctx); err != nil {
			slog.ErrorContext(ctx, "scan pass failed", "error", err)
		}

		select {
		case <-w.stopCh:
			slog.InfoContext(ctx, "ingest worker stopping")
			return nil
		case <-ctx.Done():
			if w.stopping() {
				slog.InfoContext(ctx, "ingest worker stopping")
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stop signals the worker and waits for Run to return. It is safe to call
// more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.stoppedCh
}

func (w *Worker) stopping() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

func (w *Worker) runPassSafe(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in scan pass", "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if ctx.Err() != nil {
		return nil
	}
	_, err = w.ingester.IngestOnce(ctx, w.cfg.LogDir, w.cfg.BatchSize, w.cfg.MaxBatchesPerFile)
	return err
}
