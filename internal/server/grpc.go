package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/middleware"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/observability"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/service"
)

// DefaultMaxMessageBytes bounds a request. Uploads carry base64 data inline.
const DefaultMaxMessageBytes = 32 << 20

// NewGRPCServer builds a server exposing FileService with metrics, logging
// and token extraction, in that order. Pass tracing or TLS through opts.
func NewGRPCServer(files *service.FileManager, logger *zap.Logger, mc *observability.MetricsCollector, maxMessageBytes int, opts ...grpc.ServerOption) *grpc.Server {
	if maxMessageBytes <= 0 {
		maxMessageBytes = DefaultMaxMessageBytes
	}

	interceptors := []grpc.UnaryServerInterceptor{}
	if mc != nil {
		interceptors = append(interceptors, mc.GetServerMetrics().UnaryServerInterceptor())
	}
	interceptors = append(interceptors,
		middleware.UnaryLoggingInterceptor(logger),
		middleware.TokenInterceptor,
	)

	opts = append([]grpc.ServerOption{
		grpc.UnaryInterceptor(middleware.ChainUnaryInterceptors(interceptors...)),
		grpc.MaxRecvMsgSize(maxMessageBytes),
		grpc.MaxSendMsgSize(maxMessageBytes),
	}, opts...)

	srv := grpc.NewServer(opts...)
	RegisterFileServiceServer(srv, NewFileServer(files))
	if mc != nil {
		mc.GetServerMetrics().InitializeMetrics(srv)
	}
	return srv
}
