package server

import (
	"context"
	"errors"
	"mime"
	"path/filepath"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/middleware"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/service"
)

// fileServer adapts the FileManager to gRPC. The session token comes from
// the x-token header.
type fileServer struct {
	files *service.FileManager
}

func NewFileServer(files *service.FileManager) FileServiceServer {
	return &fileServer{files: files}
}

func (s *fileServer) Upload(ctx context.Context, req *UploadRequest) (*models.FileRecord, error) {
	rec, err := s.files.PostUpload(ctx, middleware.TokenFromContext(ctx), req)
	if err != nil {
		return nil, toStatus(err)
	}
	return rec, nil
}

func (s *fileServer) Show(ctx context.Context, req *FileRequest) (*models.FileRecord, error) {
	rec, err := s.files.GetShow(ctx, middleware.TokenFromContext(ctx), req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return rec, nil
}

func (s *fileServer) Index(ctx context.Context, req *IndexRequest) (*IndexResponse, error) {
	recs, err := s.files.GetIndex(ctx, middleware.TokenFromContext(ctx), req.ParentID, req.Page)
	if err != nil {
		return nil, toStatus(err)
	}
	return &IndexResponse{Files: recs}, nil
}

func (s *fileServer) Publish(ctx context.Context, req *FileRequest) (*models.FileRecord, error) {
	rec, err := s.files.PutPublish(ctx, middleware.TokenFromContext(ctx), req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return rec, nil
}

func (s *fileServer) Unpublish(ctx context.Context, req *FileRequest) (*models.FileRecord, error) {
	rec, err := s.files.PutUnpublish(ctx, middleware.TokenFromContext(ctx), req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return rec, nil
}

func (s *fileServer) Data(ctx context.Context, req *DataRequest) (*DataResponse, error) {
	data, rec, err := s.files.GetData(ctx, middleware.TokenFromContext(ctx), req.ID, req.Size)
	if err != nil {
		return nil, toStatus(err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(rec.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &DataResponse{Name: rec.Name, ContentType: contentType, Data: data}, nil
}

func (s *fileServer) Disconnect(ctx context.Context, _ *Empty) (*Empty, error) {
	if err := s.files.Disconnect(ctx, middleware.TokenFromContext(ctx)); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *fileServer) Status(ctx context.Context, _ *Empty) (*StatusResponse, error) {
	st := s.files.Status(ctx)
	return &st, nil
}

func (s *fileServer) Stats(ctx context.Context, _ *Empty) (*StatsResponse, error) {
	stats, err := s.files.Stats(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return stats, nil
}

// toStatus maps domain errors to gRPC codes. Backend failure details stay in
// the server log.
func toStatus(err error) error {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Reason)
	case errors.Is(err, models.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "Unauthorized")
	case errors.Is(err, models.ErrNotFound):
		return status.Error(codes.NotFound, "Not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, "Internal error")
	}
}
