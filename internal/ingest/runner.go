package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yigitozgenc/image-api/internal/domain"
	"github.com/yigitozgenc/image-api/internal/metrics"
	"github.com/yigitozgenc/image-api/pkg/utils"

	"go.uber.org/zap"
)

const DefaultBatchSize = 100

// FrameBuilder превращает сырую строку в кадр (pipeline.Ingester)
type FrameBuilder interface {
	Ingest(row domain.RawSampleRow) (*domain.FrameRecord, error)
}

// FrameSaver сохраняет пачку кадров атомарно
type FrameSaver interface {
	SaveFrames(ctx context.Context, frames []*domain.FrameRecord) error
}

// Summary итог одного прогона загрузки
type Summary struct {
	RunID         string        `json:"run_id"`
	RowsRead      int           `json:"rows_read"`
	Ingested      int           `json:"ingested"`
	Failed        int           `json:"failed"`
	Saved         int           `json:"saved"`
	Batches       int           `json:"batches"`
	BatchFailures int           `json:"batch_failures"`
	Duration      time.Duration `json:"duration"`
}

type Runner struct {
	builder   FrameBuilder
	saver     FrameSaver
	workers   int
	batchSize int
	logger    *zap.Logger
}

func NewRunner(builder FrameBuilder, saver FrameSaver, workers, batchSize int, logger *zap.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Runner{
		builder:   builder,
		saver:     saver,
		workers:   workers,
		batchSize: batchSize,
		logger:    logger,
	}
}

type counters struct {
	rowsRead      atomic.Int64
	ingested      atomic.Int64
	failed        atomic.Int64
	saved         atomic.Int64
	batches       atomic.Int64
	batchFailures atomic.Int64
}

// Run читает источник до конца: строки раздаются воркерам, готовые кадры пишутся пачками по batchSize.
// Ошибки отдельных строк и пачек логируются и считаются, прогон продолжается.
// Ошибка возвращается только если сам источник сломался или ctx отменён.
func (r *Runner) Run(ctx context.Context, source RowSource) (*Summary, error) {
	start := time.Now()
	runID := utils.NewUUID().String()
	logger := r.logger.With(zap.String("run_id", runID))

	logger.Info("starting ingestion",
		zap.Int("workers", r.workers),
		zap.Int("batch_size", r.batchSize),
		zap.String("start_time", start.Format(time.RFC3339)),
	)

	var stats counters

	rows := make(chan *Row, r.workers*2)
	frames := make(chan *domain.FrameRecord, r.batchSize)
	produced := make(chan error, 1)

	go func() {
		defer close(rows)
		produced <- r.produce(ctx, source, rows, &stats, logger)
	}()

	var batcherDone sync.WaitGroup
	batcherDone.Add(1)
	go func() {
		defer batcherDone.Done()
		r.batch(ctx, frames, &stats, logger)
	}()

	// Устанавливаем начальное количество активных воркеров
	metrics.IngestActiveWorkers.Set(float64(r.workers))

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			defer metrics.IngestActiveWorkers.Dec()
			r.work(ctx, workerID, rows, frames, &stats, logger)
		}(i)
	}

	wg.Wait()

	// после отмены в rows могут остаться прочитанные строки: считаем их неудачными
	discarded := 0
	for range rows {
		discarded++
	}
	if discarded > 0 {
		stats.failed.Add(int64(discarded))
		metrics.IngestRowsFailed.Add(float64(discarded))
		logger.Warn("discarded buffered rows after cancellation", zap.Int("discarded", discarded))
	}

	close(frames)
	batcherDone.Wait()
	sourceErr := <-produced

	metrics.IngestActiveWorkers.Set(0)

	summary := &Summary{
		RunID:         runID,
		RowsRead:      int(stats.rowsRead.Load()),
		Ingested:      int(stats.ingested.Load()),
		Failed:        int(stats.failed.Load()),
		Saved:         int(stats.saved.Load()),
		Batches:       int(stats.batches.Load()),
		BatchFailures: int(stats.batchFailures.Load()),
		Duration:      time.Since(start),
	}

	logger.Info("ingestion finished",
		zap.Int("rows_read", summary.RowsRead),
		zap.Int("ingested", summary.Ingested),
		zap.Int("failed", summary.Failed),
		zap.Int("saved", summary.Saved),
		zap.Int("batches", summary.Batches),
		zap.Int("batch_failures", summary.BatchFailures),
		zap.Duration("duration", summary.Duration),
	)

	if sourceErr != nil {
		return summary, sourceErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Runner) produce(ctx context.Context, source RowSource, rows chan<- *Row, stats *counters, logger *zap.Logger) error {
	for {
		if ctx.Err() != nil {
			logger.Info("context cancelled, stopping source")
			return nil
		}

		row, err := source.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			logger.Error("failed to read source", zap.Error(err))
			return fmt.Errorf("failed to read rows: %w", err)
		}

		stats.rowsRead.Add(1)
		metrics.IngestRowsReceived.Inc()

		if row.Err != nil {
			stats.failed.Add(1)
			metrics.IngestRowsFailed.Inc()
			logger.Warn("skipping unparseable row",
				zap.Int("row", row.Number),
				zap.Error(row.Err),
			)
			continue
		}

		select {
		case rows <- row:
		case <-ctx.Done():
			stats.failed.Add(1)
			metrics.IngestRowsFailed.Inc()
			logger.Info("context cancelled, stopping source", zap.Int("row", row.Number))
			return nil
		}
	}
}

func (r *Runner) work(ctx context.Context, workerID int, rows <-chan *Row, frames chan<- *domain.FrameRecord, stats *counters, logger *zap.Logger) {
	logger.Debug("worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case row, ok := <-rows:
			if !ok {
				logger.Debug("row channel closed, exiting worker", zap.Int("worker_id", workerID))
				return
			}

			startTime := time.Now()

			frame, err := r.builder.Ingest(row.Sample)
			if err != nil {
				stats.failed.Add(1)
				metrics.IngestRowsFailed.Inc()

				logger.Warn("failed to process row",
					zap.Int("worker_id", workerID),
					zap.Int("row", row.Number),
					zap.String("depth", row.Sample.Depth.String()),
					zap.Error(err),
				)
				continue
			}

			stats.ingested.Add(1)
			metrics.IngestFramesProcessed.Inc()
			metrics.IngestRowProcessingTime.Observe(time.Since(startTime).Seconds())

			// batcher читает frames до закрытия канала, поэтому отправка не блокируется навсегда
			frames <- frame

		case <-ctx.Done():
			logger.Info("context cancelled, exiting worker", zap.Int("worker_id", workerID))
			return
		}
	}
}

func (r *Runner) batch(ctx context.Context, frames <-chan *domain.FrameRecord, stats *counters, logger *zap.Logger) {
	pending := make([]*domain.FrameRecord, 0, r.batchSize)

	flush := func() {
		if len(pending) == 0 {
			return
		}

		stats.batches.Add(1)
		if err := r.saver.SaveFrames(ctx, pending); err != nil {
			stats.batchFailures.Add(1)
			metrics.IngestBatchFailures.Inc()
			logger.Error("failed to save batch",
				zap.Int("size", len(pending)),
				zap.String("first_depth", pending[0].Depth.String()),
				zap.Error(err),
			)
		} else {
			saved := stats.saved.Add(int64(len(pending)))
			metrics.IngestFramesSaved.Add(float64(len(pending)))
			logger.Info("batch saved",
				zap.Int("size", len(pending)),
				zap.Int64("saved", saved),
				zap.Int64("rows_read", stats.rowsRead.Load()),
			)
		}

		pending = make([]*domain.FrameRecord, 0, r.batchSize)
	}

	for frame := range frames {
		pending = append(pending, frame)
		if len(pending) >= r.batchSize {
			flush()
		}
	}
	flush()
}
