package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/yigitozgenc/image-api/internal/config"
	appgrpc "github.com/yigitozgenc/image-api/internal/grpc"
	apphttp "github.com/yigitozgenc/image-api/internal/http"
	"github.com/yigitozgenc/image-api/internal/service"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 30 * time.Second

// App HTTP и gRPC серверы поверх одного FrameService
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	service    *service.FrameService
	httpServer *apphttp.HTTPServer
	grpcServer *appgrpc.GRPCServer
}

func NewApp(
	cfg *config.Config,
	logger *zap.Logger,
	frameService *service.FrameService,
	httpServer *apphttp.HTTPServer,
	grpcServer *appgrpc.GRPCServer,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		service:    frameService,
		httpServer: httpServer,
		grpcServer: grpcServer,
	}
}

// Run работает до отмены ctx или падения одного из серверов
func (a *App) Run(ctx context.Context) error {
	if _, err := a.service.InitSchema(ctx); err != nil {
		a.logger.Error("Failed to initialize database schema", zap.Error(err))
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	errCh := make(chan error, 2)

	// Запуск HTTP сервера
	go func() {
		if err := a.httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	// Запуск GRPC сервера
	go func() {
		if err := a.grpcServer.Start(a.cfg.GRPCAddr); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("gRPC server failed: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down servers...")
	case runErr = <-errCh:
		a.logger.Error("Server failed, shutting down", zap.Error(runErr))
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Останавливаем HTTP сервер
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	// Останавливаем GRPC сервер
	if err := a.grpcServer.Shutdown(shutdownCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			a.logger.Warn("gRPC server shutdown due to timeout")
		} else {
			a.logger.Error("gRPC server shutdown failed", zap.Error(err))
		}
	}

	a.logger.Info("Image API stopped")
	return runErr
}
