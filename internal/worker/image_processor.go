package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/database"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/observability"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/queue"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/storage"
)

// ThumbnailWidths are the derivative widths produced for every image.
var ThumbnailWidths = []int{100, 250, 500}

// BlobStore is what the thumbnailer needs from blob storage.
type BlobStore interface {
	Get(localPath string) ([]byte, error)
	WriteAtomic(path string, write func(io.Writer) error) error
}

// Derivative is the outcome of one width.
type Derivative struct {
	Width int
	Path  string
	Err   error
}

// Result summarizes a job. A job may partially succeed.
type Result struct {
	FileID      models.ID
	Derivatives []Derivative
}

// Err joins the per-width failures, nil when every width was written.
func (r *Result) Err() error {
	var errs []error
	for _, d := range r.Derivatives {
		if d.Err != nil {
			errs = append(errs, fmt.Errorf("width %d: %w", d.Width, d.Err))
		}
	}
	return errors.Join(errs...)
}

func (r *Result) Written() int {
	n := 0
	for _, d := range r.Derivatives {
		if d.Err == nil {
			n++
		}
	}
	return n
}

// ImageProcessor writes resized copies of an image next to its blob.
type ImageProcessor struct {
	store  database.Store
	blobs  BlobStore
	widths []int
	logger *zap.Logger
}

func NewImageProcessor(store database.Store, blobs BlobStore, logger *zap.Logger) *ImageProcessor {
	return &ImageProcessor{
		store:  store,
		blobs:  blobs,
		widths: ThumbnailWidths,
		logger: logger,
	}
}

// Process generates every derivative for job. Errors wrapping
// models.ErrFatalJob must not be retried; otherwise a non-nil Result.Err()
// lists widths that failed while the others were still written. When the
// source cannot be decoded every width fails and Result.Err() wraps
// models.ErrFatalJob.
func (ip *ImageProcessor) Process(ctx context.Context, job queue.ThumbnailJob) (*Result, error) {
	start := time.Now()
	if err := job.Validate(); err != nil {
		observability.ThumbnailJobDuration.WithLabelValues("fatal").Observe(time.Since(start).Seconds())
		return nil, err
	}

	file, err := ip.store.FindOne(ctx, database.Filter{ID: job.FileID, OwnerID: job.OwnerID, Kind: models.KindImage})
	if err != nil {
		return nil, err
	}
	if file == nil || file.LocalPath == "" {
		observability.ThumbnailJobDuration.WithLabelValues("fatal").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: no image %s for user %s", models.ErrFatalJob, job.FileID, job.OwnerID)
	}

	res := &Result{FileID: file.ID, Derivatives: make([]Derivative, len(ip.widths))}
	src, format, decodeErr := ip.decode(file.LocalPath)
	if decodeErr != nil {
		ip.logger.Debug("source image unreadable", zap.String("path", file.LocalPath), zap.Error(decodeErr))
	}

	var g errgroup.Group
	for i, width := range ip.widths {
		res.Derivatives[i] = Derivative{Width: width, Path: storage.DerivativePath(file.LocalPath, width)}
		g.Go(func() error {
			d := &res.Derivatives[i]
			if decodeErr != nil {
				d.Err = decodeErr
			} else {
				d.Err = ip.saveThumbnail(ctx, src, format, d.Path, width)
			}
			outcome := "ok"
			if d.Err != nil {
				outcome = "error"
			}
			observability.ThumbnailsTotal.WithLabelValues(strconv.Itoa(width), outcome).Inc()
			return nil
		})
	}
	g.Wait()

	outcome := "ok"
	if res.Err() != nil {
		outcome = "partial"
	}
	observability.ThumbnailJobDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return res, nil
}

func (ip *ImageProcessor) decode(localPath string) (image.Image, imaging.Format, error) {
	data, err := ip.blobs.Get(localPath)
	if err != nil {
		return nil, 0, fmt.Errorf("read source: %w", err)
	}
	// The bytes will not change between attempts, so bad content is fatal.
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: decode image config: %v", models.ErrFatalJob, err)
	}
	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: unsupported format %q: %v", models.ErrFatalJob, name, err)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: decode image: %v", models.ErrFatalJob, err)
	}
	return img, format, nil
}

func (ip *ImageProcessor) saveThumbnail(ctx context.Context, img image.Image, format imaging.Format, path string, width int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Height 0 keeps the aspect ratio.
	thumb := imaging.Resize(img, width, 0, imaging.Lanczos)
	return ip.blobs.WriteAtomic(path, func(w io.Writer) error {
		if err := imaging.Encode(w, thumb, format); err != nil {
			return fmt.Errorf("encode thumbnail: %w", err)
		}
		return nil
	})
}
