package server

import (
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/service"
)

type (
	UploadRequest  = service.UploadRequest
	StatusResponse = service.Status
	StatsResponse  = service.Stats
)

type Empty struct{}

// FileRequest names a single record.
type FileRequest struct {
	ID string `json:"id"`
}

type IndexRequest struct {
	ParentID string `json:"parentId,omitempty"`
	Page     int    `json:"page"`
}

type IndexResponse struct {
	Files []*models.FileRecord `json:"files"`
}

// DataRequest asks for a file's content. Size selects a thumbnail width;
// zero means the uploaded file itself.
type DataRequest struct {
	ID   string `json:"id"`
	Size int    `json:"size,omitempty"`
}

type DataResponse struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}
