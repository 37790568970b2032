package server

import (
	"context"

	"google.golang.org/grpc"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
)

const ServiceName = "filetree.v1.FileService"

// FileServiceServer is the server API of FileService.
type FileServiceServer interface {
	Upload(context.Context, *UploadRequest) (*models.FileRecord, error)
	Show(context.Context, *FileRequest) (*models.FileRecord, error)
	Index(context.Context, *IndexRequest) (*IndexResponse, error)
	Publish(context.Context, *FileRequest) (*models.FileRecord, error)
	Unpublish(context.Context, *FileRequest) (*models.FileRecord, error)
	Data(context.Context, *DataRequest) (*DataResponse, error)
	Disconnect(context.Context, *Empty) (*Empty, error)
	Status(context.Context, *Empty) (*StatusResponse, error)
	Stats(context.Context, *Empty) (*StatsResponse, error)
}

// ServiceDesc describes FileService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Upload", FileServiceServer.Upload),
		unary("Show", FileServiceServer.Show),
		unary("Index", FileServiceServer.Index),
		unary("Publish", FileServiceServer.Publish),
		unary("Unpublish", FileServiceServer.Unpublish),
		unary("Data", FileServiceServer.Data),
		unary("Disconnect", FileServiceServer.Disconnect),
		unary("Status", FileServiceServer.Status),
		unary("Stats", FileServiceServer.Stats),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterFileServiceServer(s grpc.ServiceRegistrar, srv FileServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary builds the method handler protoc-gen-go-grpc would generate.
func unary[Req, Resp any](name string, call func(FileServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FileServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FileServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
