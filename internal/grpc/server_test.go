package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/yigitozgenc/image-api/internal/domain"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Readiness(ctx context.Context) domain.Readiness {
	args := m.Called(ctx)
	return args.Get(0).(domain.Readiness)
}

func checkStatus(t *testing.T, server *GRPCServer, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()

	resp, err := server.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestGRPCServer_NotServingBeforeFirstCheck(t *testing.T) {
	server := NewGRPCServer(new(MockService), time.Second, zap.NewNop())

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkStatus(t, server, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkStatus(t, server, ServiceName))
}

func TestGRPCServer_UpdateHealth(t *testing.T) {
	mockService := new(MockService)
	server := NewGRPCServer(mockService, time.Second, zap.NewNop())

	mockService.On("Readiness", mock.Anything).Return(domain.Readiness{Connected: true, TablesExist: true}).Once()
	assert.True(t, server.UpdateHealth(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkStatus(t, server, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkStatus(t, server, ServiceName))

	mockService.On("Readiness", mock.Anything).Return(domain.Readiness{Connected: true}).Once()
	assert.False(t, server.UpdateHealth(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkStatus(t, server, ""))

	mockService.AssertExpectations(t)
}

func TestGRPCServer_HealthOverConnection(t *testing.T) {
	mockService := new(MockService)
	mockService.On("Readiness", mock.Anything).Return(domain.Readiness{Connected: true, TablesExist: true})

	server := NewGRPCServer(mockService, 50*time.Millisecond, zap.NewNop())

	lis := bufconn.Listen(1024 * 1024)
	go func() {
		_ = server.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)

	assert.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		return err == nil && resp.Status == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
}

func TestGRPCServer_ShutdownWithoutServe(t *testing.T) {
	server := NewGRPCServer(new(MockService), time.Second, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, server.Shutdown(ctx))
}

func TestInterceptorLogger_OddFields(t *testing.T) {
	logger := interceptorLogger(zap.NewNop())

	assert.NotPanics(t, func() {
		logger.Log(context.Background(), logging.LevelInfo, "message", "key", "value", "dangling")
	})
}
