package service

import (
	"context"
	"fmt"

	"github.com/yigitozgenc/image-api/internal/domain"
	"github.com/yigitozgenc/image-api/internal/imaging"
	"github.com/yigitozgenc/image-api/internal/metrics"
	"github.com/yigitozgenc/image-api/internal/pipeline"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	GetFramesByDepthRange(ctx context.Context, depthMin, depthMax decimal.Decimal, limit int) ([]*domain.FrameRecord, error)
	TablesExist(ctx context.Context) (bool, error)
	CreateTables(ctx context.Context) error
	DeleteAll(ctx context.Context) (int64, error)
	HealthCheck(ctx context.Context) error
}

type FrameService struct {
	repo   Repository
	server *pipeline.Server
	logger *zap.Logger
}

func NewFrameService(repo Repository, server *pipeline.Server, logger *zap.Logger) *FrameService {
	if server == nil {
		server = pipeline.NewServer(nil)
	}
	return &FrameService{
		repo:   repo,
		server: server,
		logger: logger,
	}
}

func (s *FrameService) CheckDBConnection(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

// GetFrames возвращает кадры диапазона глубин, раскрашенные палитрой, в порядке возрастания глубины.
// Битые кадры пропускаются и логируются, запрос целиком из-за них не падает.
func (s *FrameService) GetFrames(ctx context.Context, query domain.FrameQuery) ([]*domain.ResponseItem, error) {
	if query.Colormap == "" {
		query.Colormap = domain.DefaultColormap
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if !imaging.IsColormap(query.Colormap) {
		return nil, fmt.Errorf("%w: unknown colormap %q", domain.ErrValidation, query.Colormap)
	}

	records, err := s.repo.GetFramesByDepthRange(ctx, query.DepthMin, query.DepthMax, query.Limit)
	if err != nil {
		s.logger.Error("[FrameService] Failed to get frames by depth range",
			zap.String("depth_min", query.DepthMin.String()),
			zap.String("depth_max", query.DepthMax.String()),
			zap.Error(err))
		return nil, err
	}

	items, failures := s.server.ServeBatch(records, query.Colormap)
	for _, failure := range failures {
		metrics.FramesServeFailed.Inc()
		s.logger.Warn("[FrameService] Skipping frame that failed to process",
			zap.String("depth", failure.Depth.String()),
			zap.String("colormap", query.Colormap),
			zap.Error(failure.Err))
	}

	metrics.FramesServed.Add(float64(len(items)))
	metrics.FramesPerResponse.Observe(float64(len(items)))

	s.logger.Debug("[FrameService] Frames served",
		zap.String("depth_min", query.DepthMin.String()),
		zap.String("depth_max", query.DepthMax.String()),
		zap.String("colormap", query.Colormap),
		zap.Int("found", len(records)),
		zap.Int("served", len(items)),
		zap.Int("failed", len(failures)))

	return items, nil
}

// Readiness таблицы проверяются только при живом соединении
func (s *FrameService) Readiness(ctx context.Context) domain.Readiness {
	var readiness domain.Readiness

	if err := s.repo.HealthCheck(ctx); err != nil {
		s.logger.Warn("[FrameService] Database is not reachable", zap.Error(err))
		return readiness
	}
	readiness.Connected = true

	exists, err := s.repo.TablesExist(ctx)
	if err != nil {
		s.logger.Warn("[FrameService] Failed to check tables", zap.Error(err))
		return readiness
	}
	readiness.TablesExist = exists

	return readiness
}

// InitSchema создаёт схему, если её нет. created == true, если таблицы создавались в этом вызове.
func (s *FrameService) InitSchema(ctx context.Context) (bool, error) {
	exists, err := s.repo.TablesExist(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.Info("[FrameService] Schema already exists")
		return false, nil
	}

	if err := s.repo.CreateTables(ctx); err != nil {
		s.logger.Error("[FrameService] Failed to create schema", zap.Error(err))
		return false, err
	}

	s.logger.Info("[FrameService] Schema created")
	return true, nil
}

func (s *FrameService) ClearFrames(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		s.logger.Error("[FrameService] Failed to delete frames", zap.Error(err))
		return 0, err
	}

	s.logger.Info("[FrameService] Frames deleted", zap.Int64("deleted", deleted))
	return deleted, nil
}
