//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/yigitozgenc/image-api/internal/config"
	appgrpc "github.com/yigitozgenc/image-api/internal/grpc"
	apphttp "github.com/yigitozgenc/image-api/internal/http"
	"github.com/yigitozgenc/image-api/internal/pipeline"
	"github.com/yigitozgenc/image-api/internal/repository/postgres"
	"github.com/yigitozgenc/image-api/internal/service"

	"github.com/google/wire"
	"go.uber.org/zap"
)

func InitializeApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	panic(wire.Build(
		provideRepository,
		provideCodec,
		pipeline.NewServer,
		service.NewFrameService,
		wire.Bind(new(service.Repository), new(*postgres.PostgresRepository)),
		wire.Bind(new(apphttp.FrameService), new(*service.FrameService)),
		wire.Bind(new(appgrpc.ReadinessChecker), new(*service.FrameService)),
		provideHTTPServer,
		provideGRPCServer,
		NewApp,
	))
}
