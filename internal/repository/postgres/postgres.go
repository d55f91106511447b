package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/yigitozgenc/image-api/internal/config"
	"github.com/yigitozgenc/image-api/internal/domain"
	"github.com/yigitozgenc/image-api/internal/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS image_frames (
	id            BIGSERIAL PRIMARY KEY,
	depth         NUMERIC(10, 2) NOT NULL,
	original_data BYTEA NOT NULL,
	resized_data  BYTEA NOT NULL,
	metadata      JSONB NOT NULL
)`
	createIndexSQL = "CREATE INDEX IF NOT EXISTS idx_depth_range ON image_frames (depth)"

	tablesExistSQL = `SELECT EXISTS (
	SELECT FROM information_schema.tables
	WHERE table_schema = 'public' AND table_name = 'image_frames'
)`

	insertFrameSQL = "INSERT INTO image_frames (depth, original_data, resized_data, metadata) VALUES ($1::numeric, $2, $3, $4) RETURNING id"

	// LIMIT NULL в Postgres означает "без ограничения"
	selectFramesSQL = "SELECT id, depth::text, original_data, resized_data, metadata FROM image_frames WHERE depth >= $1::numeric AND depth <= $2::numeric ORDER BY depth LIMIT $3"

	deleteFramesSQL = "DELETE FROM image_frames"
)

type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	cancel context.CancelFunc
}

func NewPostgresRepository(ctx context.Context, dbConfig config.DBConfig, logger *zap.Logger) (*PostgresRepository, error) {
	// Конфигурация пула
	config, err := pgxpool.ParseConfig(dbConfig.DBSource)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.MaxConns = int32(dbConfig.MaxDBConnections)
	config.MinConns = int32(dbConfig.MinDBConnections)
	config.MaxConnLifetime = dbConfig.MaxConnLifetime
	config.MaxConnIdleTime = dbConfig.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	monitorCtx, cancel := context.WithCancel(ctx)
	go monitorConnections(monitorCtx, pool, logger)

	return &PostgresRepository{
		pool:   pool,
		logger: logger,
		cancel: cancel,
	}, nil
}

// monitorConnections периодически обновляет метрики соединений и завершается при отмене ctx
func monitorConnections(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Stopping monitorConnections goroutine due to context cancellation")
			return
		case <-ticker.C:
			stats := pool.Stat()
			metrics.DBActiveConnections.Set(float64(stats.AcquiredConns()))
			metrics.DBIdleConnections.Set(float64(stats.IdleConns()))

			logger.Debug("Database connection stats",
				zap.Int("acquired", int(stats.AcquiredConns())),
				zap.Int("idle", int(stats.IdleConns())),
				zap.Int("max", int(stats.MaxConns())),
			)
		}
	}
}

func observe(operation string, start time.Time) {
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// SaveFrames вставляет пачку кадров одной транзакцией: либо все, либо ни одного.
// Присвоенные базой id записываются в кадры.
func (r *PostgresRepository) SaveFrames(ctx context.Context, frames []*domain.FrameRecord) error {
	if len(frames) == 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	defer observe("save_frames", time.Now())

	ids := make([]int64, len(frames))
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, frame := range frames {
			batch.Queue(insertFrameSQL,
				frame.Depth.String(),
				frame.OriginalData,
				frame.PreviewData,
				frame.Metadata,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for i := range frames {
			if err := results.QueryRow().Scan(&ids[i]); err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to insert frame depth=%s: %w", frames[i].Depth.String(), err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return fmt.Errorf("failed to save frames: %w", err)
	}

	for i, frame := range frames {
		frame.ID = ids[i]
	}

	r.logger.Debug("frames saved", zap.Int("count", len(frames)))
	return nil
}

// GetFramesByDepthRange кадры с depth в [min, max] по возрастанию глубины; при limit <= 0 без ограничения
func (r *PostgresRepository) GetFramesByDepthRange(ctx context.Context, depthMin, depthMax decimal.Decimal, limit int) ([]*domain.FrameRecord, error) {
	defer observe("get_frames_by_depth_range", time.Now())

	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	rows, err := r.pool.Query(ctx, selectFramesSQL, depthMin.String(), depthMax.String(), limitArg)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %w", err)
	}
	defer rows.Close()

	var results []*domain.FrameRecord
	for rows.Next() {
		var (
			frame domain.FrameRecord
			depth string
		)
		if err := rows.Scan(&frame.ID, &depth, &frame.OriginalData, &frame.PreviewData, &frame.Metadata); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		frame.Depth, err = decimal.NewFromString(depth)
		if err != nil {
			return nil, fmt.Errorf("failed to parse depth %q: %w", depth, err)
		}
		results = append(results, &frame)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

func (r *PostgresRepository) CreateTables(ctx context.Context) error {
	defer observe("create_tables", time.Now())

	if _, err := r.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if _, err := r.pool.Exec(ctx, createIndexSQL); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

func (r *PostgresRepository) TablesExist(ctx context.Context) (bool, error) {
	defer observe("tables_exist", time.Now())

	var exists bool
	if err := r.pool.QueryRow(ctx, tablesExistSQL).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check tables: %w", err)
	}
	return exists, nil
}

// DeleteAll очищает таблицу кадров, схема остаётся
func (r *PostgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	defer observe("delete_all", time.Now())

	tag, err := r.pool.Exec(ctx, deleteFramesSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to delete frames: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) HealthCheck(ctx context.Context) error {
	defer observe("health_check", time.Now())

	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) Close() {
	if r.cancel != nil {
		r.cancel()
	}
	if r.pool != nil {
		r.pool.Close()
	}
}
