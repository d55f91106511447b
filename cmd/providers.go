package main

import (
	"context"
	"fmt"

	"github.com/yigitozgenc/image-api/internal/codec"
	"github.com/yigitozgenc/image-api/internal/config"
	appgrpc "github.com/yigitozgenc/image-api/internal/grpc"
	apphttp "github.com/yigitozgenc/image-api/internal/http"
	"github.com/yigitozgenc/image-api/internal/repository/postgres"

	"go.uber.org/zap"
)

func provideRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*postgres.PostgresRepository, func(), error) {
	repo, err := postgres.NewPostgresRepository(ctx, cfg.DBConfig, logger)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database connection established")

	cleanup := func() {
		repo.Close()
		logger.Info("Database connection closed")
	}
	return repo, cleanup, nil
}

func provideCodec(cfg *config.Config) (*codec.Codec, error) {
	return codec.New(cfg.Image.CompressionLevel)
}

func provideHTTPServer(cfg *config.Config, service apphttp.FrameService, logger *zap.Logger) *apphttp.HTTPServer {
	return apphttp.NewHTTPServer(apphttp.ServerConfig{
		Addr:              cfg.HTTPAddr,
		Version:           Version,
		PrometheusEnabled: cfg.PrometheusEnabled,
	}, service, logger)
}

func provideGRPCServer(cfg *config.Config, service appgrpc.ReadinessChecker, logger *zap.Logger) *appgrpc.GRPCServer {
	return appgrpc.NewGRPCServer(service, cfg.HealthInterval, logger)
}
