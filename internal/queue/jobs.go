package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
)

const (
	// TypeThumbnail is scheduled each time an image is uploaded.
	TypeThumbnail = "thumbnail:generate"
	// QueueName is the asynq queue thumbnail tasks go to.
	QueueName = "fileQueue"
)

// ThumbnailJob is serialized into the task payload so the worker knows which
// record to resize.
type ThumbnailJob struct {
	FileID  models.ID `json:"fileId"`
	OwnerID string    `json:"userId"`
}

// Enqueuer submits thumbnail jobs. Delivery is at-least-once.
type Enqueuer interface {
	EnqueueThumbnail(ctx context.Context, job ThumbnailJob) error
}

func (j ThumbnailJob) Marshal() ([]byte, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return data, nil
}

// DecodeThumbnailJob parses a task payload. Malformed payloads and jobs
// missing either id are fatal: retrying cannot fix them.
func DecodeThumbnailJob(data []byte) (ThumbnailJob, error) {
	var job ThumbnailJob
	if err := json.Unmarshal(data, &job); err != nil {
		return job, fmt.Errorf("%w: decode payload: %v", models.ErrFatalJob, err)
	}
	if err := job.Validate(); err != nil {
		return job, err
	}
	return job, nil
}

func (j ThumbnailJob) Validate() error {
	if j.FileID == "" || j.OwnerID == "" {
		return fmt.Errorf("%w: missing fileId or userId", models.ErrFatalJob)
	}
	if _, err := models.ParseFileID(string(j.FileID)); err != nil {
		return fmt.Errorf("%w: invalid fileId %q", models.ErrFatalJob, j.FileID)
	}
	return nil
}
