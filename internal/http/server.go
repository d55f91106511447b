package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yigitozgenc/image-api/internal/domain"
	"github.com/yigitozgenc/image-api/internal/imaging"
	"github.com/yigitozgenc/image-api/internal/metrics"
	"github.com/yigitozgenc/image-api/pkg/utils"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

type FrameService interface {
	GetFrames(ctx context.Context, query domain.FrameQuery) ([]*domain.ResponseItem, error)
	Readiness(ctx context.Context) domain.Readiness
	InitSchema(ctx context.Context) (bool, error)
}

type ServerConfig struct {
	Addr              string
	Version           string
	PrometheusEnabled bool
}

type HTTPServer struct {
	server  *http.Server
	service FrameService
	version string
	metrics bool
	logger  *zap.Logger
}

func NewHTTPServer(cfg ServerConfig, service FrameService, logger *zap.Logger) *HTTPServer {
	router := mux.NewRouter()

	s := &HTTPServer{
		service: service,
		version: cfg.Version,
		metrics: cfg.PrometheusEnabled,
		logger:  logger,
	}

	// Middleware регистрации
	router.Use(s.requestIDMiddleware)
	router.Use(s.metricsMiddleware)
	router.Use(s.loggingMiddleware)

	// Маршруты
	router.HandleFunc("/", s.root).Methods("GET")
	router.HandleFunc("/health", s.healthCheck).Methods("GET")
	router.HandleFunc("/ready", s.readinessCheck).Methods("GET")
	router.HandleFunc("/init", s.initSchema).Methods("POST")
	router.HandleFunc("/frames", s.getFrames).Methods("GET")

	// Метрики Prometheus
	if cfg.PrometheusEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	// CORS: любые источники
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         86400,
	})

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// responseWriter для отслеживания статус кода и размера
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// requestIDMiddleware берёт X-Request-ID клиента или выдаёт новый
func (s *HTTPServer) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if !utils.IsValidUUID(requestID) {
			requestID = utils.NewUUID().String()
			r.Header.Set(requestIDHeader, requestID)
		}
		w.Header().Set(requestIDHeader, requestID)

		next.ServeHTTP(w, r)
	})
}

// middleware для сбора метрик HTTP запросов с использованием шаблона пути
func (s *HTTPServer) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		method := r.Method
		status := strconv.Itoa(rw.statusCode)

		// Получаем шаблон пути из mux (если доступен)
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}

		metrics.HTTPRequests.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
		metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(rw.size))
	})
}

// middleware для логирования HTTP запросов
func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.logger.Info("HTTP request",
			zap.String("request_id", r.Header.Get(requestIDHeader)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.String("ip", r.RemoteAddr),
			zap.String("user_agent", r.UserAgent()),
			zap.Int("status", rw.statusCode),
			zap.Int("response_size", rw.size),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *HTTPServer) root(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"name":    "image-api",
		"version": s.version,
		"health":  "/health",
		"ready":   "/ready",
	}
	if s.metrics {
		body["metrics"] = "/metrics"
	}
	s.writeJSON(w, http.StatusOK, body)
}

// healthCheck liveness: база не проверяется
func (s *HTTPServer) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *HTTPServer) readinessCheck(w http.ResponseWriter, r *http.Request) {
	readiness := s.service.Readiness(r.Context())

	status, code := "ready", http.StatusOK
	if !readiness.Ready() {
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	database := "disconnected"
	if readiness.Connected {
		database = "connected"
	}

	s.writeJSON(w, code, map[string]any{
		"status":       status,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"database":     database,
		"tables_exist": readiness.TablesExist,
		"connected":    readiness.Connected,
	})
}

func (s *HTTPServer) initSchema(w http.ResponseWriter, r *http.Request) {
	created, err := s.service.InitSchema(r.Context())
	if err != nil {
		s.logger.Error("Failed to initialize schema", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "failed to initialize database",
		})
		return
	}

	message := "tables already exist"
	if created {
		message = "tables created"
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "success",
		"message":        message,
		"tables_created": created,
	})
}

func (s *HTTPServer) getFrames(w http.ResponseWriter, r *http.Request) {
	query, err := parseFrameQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.service.GetFrames(r.Context(), query)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Failed to get frames",
			zap.String("depth_min", query.DepthMin.String()),
			zap.String("depth_max", query.DepthMax.String()),
			zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if items == nil {
		items = []*domain.ResponseItem{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

func parseFrameQuery(r *http.Request) (domain.FrameQuery, error) {
	params := r.URL.Query()

	depthMin, err := parseDepth(params.Get("depth_min"), "depth_min")
	if err != nil {
		return domain.FrameQuery{}, err
	}
	depthMax, err := parseDepth(params.Get("depth_max"), "depth_max")
	if err != nil {
		return domain.FrameQuery{}, err
	}

	colormap := params.Get("colormap")
	if colormap == "" {
		colormap = domain.DefaultColormap
	}
	if !imaging.IsColormap(colormap) {
		return domain.FrameQuery{}, fmt.Errorf("%w: unknown colormap %q, expected one of: %s",
			domain.ErrValidation, colormap, strings.Join(imaging.ColormapNames(), ", "))
	}

	var limit int
	if raw := params.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > domain.MaxFrameLimit {
			return domain.FrameQuery{}, fmt.Errorf("%w: limit must be an integer between 1 and %d",
				domain.ErrValidation, domain.MaxFrameLimit)
		}
	}

	query := domain.FrameQuery{
		DepthMin: depthMin,
		DepthMax: depthMax,
		Colormap: colormap,
		Limit:    limit,
	}
	if err := query.Validate(); err != nil {
		return domain.FrameQuery{}, err
	}
	return query, nil
}

func parseDepth(raw, name string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: %s is required", domain.ErrValidation, name)
	}
	depth, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s must be a number, got %q", domain.ErrValidation, name, raw)
	}
	return depth, nil
}
