package observability

import (
	"net/http"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Domain metrics.
var (
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filetree_uploads_total",
		Help: "Records created by PostUpload, by kind.",
	}, []string{"kind"})

	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filetree_requests_total",
		Help: "File manager operations by outcome.",
	}, []string{"op", "result"})

	ThumbnailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filetree_thumbnails_total",
		Help: "Derivative writes by width and outcome.",
	}, []string{"width", "result"})

	ThumbnailJobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filetree_thumbnail_job_duration_seconds",
		Help:    "Time spent per thumbnail job.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
	}, []string{"result"})
)

// MetricsCollector wraps Prometheus metrics for gRPC
type MetricsCollector struct {
	serverMetrics *grpcprom.ServerMetrics
	handler       http.Handler
}

// InitMetrics initializes Prometheus metrics for gRPC server
func InitMetrics() (*MetricsCollector, error) {
	serverMetrics := grpcprom.NewServerMetrics(
		grpcprom.WithServerHandlingTimeHistogram(
			grpcprom.WithHistogramBuckets([]float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10}),
		),
	)

	if err := prometheus.Register(serverMetrics); err != nil {
		// Already registered is fine when several servers share a process (tests).
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		if existing, ok := are.ExistingCollector.(*grpcprom.ServerMetrics); ok {
			serverMetrics = existing
		}
	}

	return &MetricsCollector{
		serverMetrics: serverMetrics,
		handler:       promhttp.Handler(),
	}, nil
}

// GetServerMetrics returns the gRPC server metrics
func (mc *MetricsCollector) GetServerMetrics() *grpcprom.ServerMetrics {
	return mc.serverMetrics
}

// GetHandler returns the HTTP handler for /metrics endpoint
func (mc *MetricsCollector) GetHandler() http.Handler {
	return mc.handler
}

// NewMetricsServer serves /metrics and /health on addr. The caller owns
// ListenAndServe and Shutdown.
func NewMetricsServer(addr string, mc *MetricsCollector) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", mc.GetHandler())
	return &http.Server{Addr: addr, Handler: mux}
}

// StartMetricsServer runs NewMetricsServer in the background.
func StartMetricsServer(addr string, mc *MetricsCollector, logger *zap.Logger) *http.Server {
	srv := NewMetricsServer(addr, mc)
	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
