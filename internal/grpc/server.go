package grpc

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/yigitozgenc/image-api/internal/domain"
	"github.com/yigitozgenc/image-api/internal/metrics"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName имя сервиса в grpc.health.v1; пустое имя означает сервер целиком
const ServiceName = "image_api.v1.Frames"

const defaultHealthInterval = 10 * time.Second

// ReadinessChecker источник готовности хранилища
type ReadinessChecker interface {
	Readiness(ctx context.Context) domain.Readiness
}

// GRPCServer отдаёт стандартный health сервис, статус которого повторяет готовность базы
type GRPCServer struct {
	server   *grpc.Server
	health   *health.Server
	service  ReadinessChecker
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	serving bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewGRPCServer(service ReadinessChecker, interval time.Duration, logger *zap.Logger) *GRPCServer {
	if interval <= 0 {
		interval = defaultHealthInterval
	}

	loggingInterceptor := logging.UnaryServerInterceptor(interceptorLogger(logger))
	metricsInterceptor := grpc_prometheus.UnaryServerInterceptor
	customMetricsInterceptor := unaryMetricsInterceptor()

	unaryChain := grpc.ChainUnaryInterceptor(
		loggingInterceptor,
		metricsInterceptor,
		customMetricsInterceptor,
	)
	streamChain := grpc.ChainStreamInterceptor(
		logging.StreamServerInterceptor(interceptorLogger(logger)),
		grpc_prometheus.StreamServerInterceptor,
	)

	s := &GRPCServer{
		server:   grpc.NewServer(unaryChain, streamChain),
		health:   health.NewServer(),
		service:  service,
		interval: interval,
		logger:   logger,
	}

	// Пока готовность не проверена, считаем сервер неготовым
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)

	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)

	grpc_prometheus.Register(s.server)
	grpc_prometheus.EnableHandlingTimeHistogram()

	return s
}

func (s *GRPCServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.logger.Info("Starting gRPC server", zap.String("addr", addr))
	return s.Serve(lis)
}

// Serve запускает опрос готовности и обслуживает lis до Shutdown
func (s *GRPCServer) Serve(lis net.Listener) error {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.watchReadiness(ctx)
	}()

	return s.server.Serve(lis)
}

func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down gRPC server")

	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	// Клиенты, подписанные через Watch, получат NOT_SERVING
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return ctx.Err()
	}
}

func (s *GRPCServer) watchReadiness(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.UpdateHealth(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Stopping readiness watcher due to context cancellation")
			return
		case <-ticker.C:
			s.UpdateHealth(ctx)
		}
	}
}

// UpdateHealth один опрос готовности. Возвращает true, если сервер обслуживает запросы.
func (s *GRPCServer) UpdateHealth(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	readiness := s.service.Readiness(checkCtx)
	serving := readiness.Ready()

	s.mu.Lock()
	changed := serving != s.serving
	s.serving = serving
	s.mu.Unlock()

	if serving {
		s.setStatus(healthpb.HealthCheckResponse_SERVING)
	} else {
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	}

	if changed {
		s.logger.Info("gRPC health status changed",
			zap.Bool("serving", serving),
			zap.Bool("connected", readiness.Connected),
			zap.Bool("tables_exist", readiness.TablesExist),
		)
	}

	return serving
}

func (s *GRPCServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Custom metrics interceptor для детального отслеживания статусов и длительности с статусом
func unaryMetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		var statusCode string
		if err != nil {
			if st, ok := status.FromError(err); ok {
				statusCode = st.Code().String()
			} else {
				statusCode = codes.Unknown.String()
			}
		} else {
			statusCode = codes.OK.String()
		}

		duration := time.Since(start).Seconds()

		metrics.GRPCRequests.WithLabelValues(info.FullMethod, statusCode).Inc()
		metrics.GRPCRequestDuration.WithLabelValues(info.FullMethod, statusCode).Observe(duration)

		return resp, err
	}
}

// Logger adapter для grpc middleware
func interceptorLogger(l *zap.Logger) logging.Logger {
	return logging.LoggerFunc(func(_ context.Context, lvl logging.Level, msg string, fields ...any) {
		f := make([]zap.Field, 0, len(fields)/2)
		for i := 0; i+1 < len(fields); i += 2 {
			key, ok := fields[i].(string)
			if !ok {
				continue
			}
			f = append(f, zap.Any(key, fields[i+1]))
		}
		logger := l.WithOptions(zap.AddCallerSkip(1)).With(f...)

		switch lvl {
		case logging.LevelDebug:
			logger.Debug(msg)
		case logging.LevelInfo:
			logger.Info(msg)
		case logging.LevelWarn:
			logger.Warn(msg)
		case logging.LevelError:
			logger.Error(msg)
		default:
			logger.Info(msg)
		}
	})
}
