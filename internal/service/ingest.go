package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"basegraph.app/siemd/common/id"
	"basegraph.app/siemd/common/logger"
	"basegraph.app/siemd/internal/ingest"
	"basegraph.app/siemd/internal/lock"
	"basegraph.app/siemd/internal/model"
	"basegraph.app/siemd/internal/store"
)

// IngestObserver receives ingestion counters. *metrics.Handler implements it.
type IngestObserver interface {
	ObserveBatch(inserted int, stats model.Stats)
	IncBatchFailures()
	IncFilesFailed()
	ObserveScan(duration time.Duration, finishedAt time.Time)
}

type IngestService interface {
	// IngestBatch reads one bounded batch of path and commits its events
	// together with the advanced checkpoint. Failures roll back and report
	// no progress.
	IngestBatch(ctx context.Context, path string, batchSize int) model.BatchResult
	// DrainFile repeats IngestBatch until the file is caught up, a batch makes
	// no progress, or maxBatches is reached.
	DrainFile(ctx context.Context, path string, batchSize, maxBatches int) model.FileResult
	// IngestOnce drains every log file under root once.
	IngestOnce(ctx context.Context, root string, batchSize, maxBatchesPerFile int) (model.IngestResult, error)
}

type IngestServiceConfig struct {
	Extension string
}

type ingestService struct {
	txRunner   TxRunner
	normalizer *ingest.Normalizer
	locker     lock.Locker
	observer   IngestObserver
	ext        string
	now        func() time.Time
}

func NewIngestService(txRunner TxRunner, normalizer *ingest.Normalizer, locker lock.Locker, observer IngestObserver, cfg IngestServiceConfig) IngestService {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	ext := cfg.Extension
	if ext == "" {
		ext = ".jsonl"
	}
	return &ingestService{
		txRunner:   txRunner,
		normalizer: normalizer,
		locker:     locker,
		observer:   observer,
		ext:        ext,
		now:        time.Now,
	}
}

func (s *ingestService) IngestBatch(ctx context.Context, path string, batchSize int) model.BatchResult {
	var (
		result model.BatchResult
		prior  model.Checkpoint
	)

	// The batch transaction is allowed to finish even if ctx is cancelled
	// meanwhile; cancellation is honoured between batches.
	txCtx := context.WithoutCancel(ctx)
	err := s.txRunner.WithTx(txCtx, func(stores StoreProvider) error {
		row, err := stores.FileOffsets().Get(txCtx, path)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("reading checkpoint: %w", err)
		}
		prior = row.Checkpoint()

		tail, err := ingest.Tail(path, prior, batchSize, s.normalizer)
		if err != nil {
			return fmt.Errorf("tailing: %w", err)
		}
		result.Stats = tail.Stats

		if tail.Inode == nil {
			result.NewOffset = prior.Offset
			return nil
		}

		if len(tail.Events) > 0 {
			if err := stores.Events().InsertBatch(txCtx, tail.Events); err != nil {
				return fmt.Errorf("inserting events: %w", err)
			}
		}

		progressed := row == nil || tail.NewOffset != prior.Offset || !sameIdentity(tail.Inode, prior.Inode)
		if progressed {
			if err := stores.FileOffsets().Upsert(txCtx, model.FileOffset{
				Path:      path,
				Inode:     tail.Inode,
				Offset:    tail.NewOffset,
				UpdatedAt: s.now().UTC().Format(ingest.ReceivedAtFormat),
			}); err != nil {
				return fmt.Errorf("saving checkpoint: %w", err)
			}
		}

		result.InsertedCount = len(tail.Events)
		result.NewOffset = tail.NewOffset
		result.Inode = tail.Inode
		result.Progressed = progressed
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "ingest batch rolled back", "error", err)
		s.observer.IncBatchFailures()
		return model.BatchResult{
			NewOffset: prior.Offset,
			Inode:     prior.Inode,
			Stats:     result.Stats,
		}
	}

	s.observer.ObserveBatch(result.InsertedCount, result.Stats)
	return result
}

func (s *ingestService) DrainFile(ctx context.Context, path string, batchSize, maxBatches int) model.FileResult {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SourceFile: &path})
	sc := logger.StartSpan(ctx, "ingest.drain_file")
	defer sc.End()
	ctx = sc.Context()

	var result model.FileResult
	for remaining := maxBatches; remaining > 0 && ctx.Err() == nil; remaining-- {
		batch := s.IngestBatch(ctx, path, batchSize)
		result.InsertedCount += batch.InsertedCount
		result.BatchCount++
		result.Stats.Add(batch.Stats)

		if !batch.Progressed || batch.InsertedCount < batchSize {
			break
		}
	}

	sc.Span().SetAttributes(
		attribute.Int("siemd.inserted", result.InsertedCount),
		attribute.Int("siemd.batches", result.BatchCount),
	)
	slog.DebugContext(ctx, "file drained",
		"inserted", result.InsertedCount,
		"batches", result.BatchCount)
	return result
}

func (s *ingestService) IngestOnce(ctx context.Context, root string, batchSize, maxBatchesPerFile int) (model.IngestResult, error) {
	runID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{RunID: &runID})
	sc := logger.StartSpan(ctx, "ingest.scan")
	defer sc.End()
	ctx = sc.Context()

	started := s.now()
	result := model.IngestResult{
		RunID:   runID,
		PerFile: make(map[string]model.FileResult),
	}

	paths, err := ingest.DiscoverFiles(root, s.ext)
	if err != nil {
		sc.RecordError(err)
		return result, fmt.Errorf("discovering log files: %w", err)
	}

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}

		fileResult, err := s.drainLocked(ctx, path, batchSize, maxBatchesPerFile)
		if err != nil {
			result.FilesFailed++
			s.observer.IncFilesFailed()
			slog.WarnContext(ctx, "file skipped in scan pass", "source_file", path, "error", err)
			continue
		}

		result.FilesScanned++
		result.TotalInserted += fileResult.InsertedCount
		result.TotalBatches += fileResult.BatchCount
		result.Stats.Add(fileResult.Stats)
		result.PerFile[path] = fileResult
	}

	finished := s.now()
	s.observer.ObserveScan(finished.Sub(started), finished)
	if result.TotalInserted > 0 || result.FilesFailed > 0 {
		slog.InfoContext(ctx, "scan pass finished",
			"files_scanned", result.FilesScanned,
			"files_failed", result.FilesFailed,
			"inserted", result.TotalInserted,
			"batches", result.TotalBatches,
			"duration_ms", finished.Sub(started).Milliseconds())
	}
	return result, nil
}

// drainLocked drains path under its per-file lock and turns a panic into an
// error so one bad file cannot abort the pass.
func (s *ingestService) drainLocked(ctx context.Context, path string, batchSize, maxBatches int) (result model.FileResult, err error) {
	release, err := s.locker.TryLock(ctx, path)
	if err != nil {
		return model.FileResult{}, fmt.Errorf("locking %s: %w", path, err)
	}
	defer release()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic draining %s: %v", path, r)
		}
	}()

	return s.DrainFile(ctx, path, batchSize, maxBatches), nil
}

func sameIdentity(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type noopObserver struct{}

func (noopObserver) ObserveBatch(int, model.Stats)        {}
func (noopObserver) IncBatchFailures()                    {}
func (noopObserver) IncFilesFailed()                      {}
func (noopObserver) ObserveScan(time.Duration, time.Time) {}
