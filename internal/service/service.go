package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/database"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/observability"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/queue"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/storage"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/worker"
)

// PostUpload creates a folder, file or image record. Steps run in order and
// stop at the first failure: validate, authenticate, check the parent,
// persist, enqueue.
func (m *FileManager) PostUpload(ctx context.Context, token string, req *UploadRequest) (rec *models.FileRecord, err error) {
	defer func() { observe("post_upload", err) }()

	in, err := validateUpload(req)
	if err != nil {
		return nil, err
	}

	ownerID, err := m.resolveOwner(ctx, token)
	if err != nil {
		return nil, err
	}

	if !in.parentID.IsRoot() {
		if err := m.checkParent(ctx, in.parentID, ownerID); err != nil {
			return nil, err
		}
	}

	rec = &models.FileRecord{
		OwnerID:   ownerID,
		Name:      in.name,
		Kind:      in.kind,
		IsPublic:  in.isPublic,
		ParentID:  in.parentID,
		CreatedAt: time.Now().UTC(),
	}

	if in.kind.HasBlob() {
		localPath, err := m.writeBlob(ctx, in.data)
		if err != nil {
			return nil, m.internal("store blob", err)
		}
		rec.LocalPath = localPath
	}

	id, err := m.store.Insert(ctx, rec)
	if err != nil {
		if rec.LocalPath != "" {
			m.logger.Warn("blob left unreferenced", zap.String("path", rec.LocalPath))
		}
		return nil, m.internal("insert record", err)
	}
	rec.ID = id
	observability.UploadsTotal.WithLabelValues(string(rec.Kind)).Inc()

	if rec.Kind == models.KindImage {
		job := queue.ThumbnailJob{FileID: rec.ID, OwnerID: ownerID}
		if err := m.queue.EnqueueThumbnail(ctx, job); err != nil {
			// Thumbnails are best effort; the upload stands.
			m.logger.Warn("failed to enqueue thumbnail job",
				zap.String("file_id", rec.ID.String()),
				zap.Error(err),
			)
		}
	}
	return rec, nil
}

// GetShow returns one of the caller's records.
func (m *FileManager) GetShow(ctx context.Context, token, fileID string) (rec *models.FileRecord, err error) {
	defer func() { observe("get_show", err) }()

	ownerID, err := m.resolveOwner(ctx, token)
	if err != nil {
		return nil, err
	}
	id, err := models.ParseFileID(fileID)
	if err != nil {
		return nil, err
	}
	rec, err = m.store.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, m.internal("find record", err)
	}
	if rec == nil {
		return nil, models.ErrNotFound
	}
	return rec, nil
}

// GetIndex lists one page of the caller's records under parentID ("" is the
// root). Asking for a page past the end of a non-empty folder fails with
// models.ErrPageOutOfRange.
func (m *FileManager) GetIndex(ctx context.Context, token, parentID string, page int) (recs []*models.FileRecord, err error) {
	defer func() { observe("get_index", err) }()

	ownerID, err := m.resolveOwner(ctx, token)
	if err != nil {
		return nil, err
	}
	pid, err := models.ParseID(parentID)
	if err != nil {
		return nil, &models.ValidationError{Field: "parentId", Reason: "Invalid parentId"}
	}
	if page < 0 {
		return nil, &models.ValidationError{Field: "page", Reason: "Invalid page"}
	}

	recs, err = m.store.List(ctx, ownerID, pid, page, m.pageSize)
	switch {
	case errors.Is(err, models.ErrNotFound), models.IsValidation(err):
		return nil, err
	case err != nil:
		return nil, m.internal("list records", err)
	}
	if recs == nil {
		recs = []*models.FileRecord{}
	}
	return recs, nil
}

func (m *FileManager) PutPublish(ctx context.Context, token, fileID string) (rec *models.FileRecord, err error) {
	defer func() { observe("put_publish", err) }()
	return m.setPublic(ctx, token, fileID, true)
}

func (m *FileManager) PutUnpublish(ctx context.Context, token, fileID string) (rec *models.FileRecord, err error) {
	defer func() { observe("put_unpublish", err) }()
	return m.setPublic(ctx, token, fileID, false)
}

func (m *FileManager) setPublic(ctx context.Context, token, fileID string, public bool) (*models.FileRecord, error) {
	ownerID, err := m.resolveOwner(ctx, token)
	if err != nil {
		return nil, err
	}
	id, err := models.ParseFileID(fileID)
	if err != nil {
		return nil, err
	}
	rec, err := m.store.UpdateField(ctx, id, ownerID, models.FieldIsPublic, public)
	if err != nil {
		return nil, m.internal("update record", err)
	}
	if rec == nil {
		return nil, models.ErrNotFound
	}
	return rec, nil
}

// GetData returns the bytes of a file, or of one of its thumbnails when
// width is non-zero. Public records are readable without a token.
func (m *FileManager) GetData(ctx context.Context, token, fileID string, width int) (data []byte, rec *models.FileRecord, err error) {
	defer func() { observe("get_data", err) }()

	id, err := models.ParseFileID(fileID)
	if err != nil {
		return nil, nil, err
	}
	if width != 0 && !slices.Contains(worker.ThumbnailWidths, width) {
		return nil, nil, &models.ValidationError{Field: "size", Reason: "Invalid size"}
	}

	// An unknown token only loses access to private records.
	ownerID, _ := m.resolveOwner(ctx, token)
	rec, err = m.store.FindPublicOrOwned(ctx, id, ownerID)
	if err != nil {
		return nil, nil, m.internal("find record", err)
	}
	if rec == nil {
		return nil, nil, models.ErrNotFound
	}
	if rec.Kind == models.KindFolder {
		return nil, nil, &models.ValidationError{Field: "id", Reason: "A folder doesn't have content"}
	}

	path := rec.LocalPath
	if width != 0 {
		path = storage.DerivativePath(rec.LocalPath, width)
	}
	data, err = m.blobs.Get(path)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil, models.ErrNotFound
	}
	if err != nil {
		return nil, nil, m.internal("read blob", err)
	}
	return data, rec, nil
}

// Connect issues a session token for an already authenticated user.
func (m *FileManager) Connect(ctx context.Context, userID string) (string, error) {
	token, err := m.sessions.Create(ctx, userID)
	if err != nil {
		return "", m.internal("create session", err)
	}
	return token, nil
}

func (m *FileManager) Disconnect(ctx context.Context, token string) error {
	err := m.sessions.Revoke(ctx, token)
	if err != nil && !errors.Is(err, models.ErrUnauthorized) {
		m.logger.Error("revoke session failed", zap.Error(err))
		return models.ErrUnauthorized
	}
	return err
}

// resolveOwner maps a token to its user. Session backend failures look like
// a missing session to the caller.
func (m *FileManager) resolveOwner(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", models.ErrUnauthorized
	}
	ownerID, err := m.sessions.Resolve(ctx, token)
	if err != nil {
		if !errors.Is(err, models.ErrUnauthorized) {
			m.logger.Error("session lookup failed", zap.Error(err))
		}
		return "", models.ErrUnauthorized
	}
	return ownerID, nil
}

func (m *FileManager) checkParent(ctx context.Context, parentID models.ID, ownerID string) error {
	parent, err := m.store.FindOne(ctx, database.Filter{ID: parentID, OwnerID: ownerID})
	if err != nil {
		return m.internal("find parent", err)
	}
	if parent == nil {
		return &models.ValidationError{Field: "parentId", Reason: models.ReasonParentNotFound}
	}
	if parent.Kind != models.KindFolder {
		return &models.ValidationError{Field: "parentId", Reason: models.ReasonParentNotFolder}
	}
	return nil
}

func (m *FileManager) writeBlob(ctx context.Context, data []byte) (string, error) {
	if err := m.uploadSem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer m.uploadSem.Release(1)
	return m.blobs.Put(data)
}

// internal logs a backend failure and returns it wrapped with the operation.
func (m *FileManager) internal(op string, err error) error {
	m.logger.Error(op+" failed", zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case models.IsValidation(err):
		result = "invalid"
	case errors.Is(err, models.ErrUnauthorized):
		result = "unauthorized"
	case errors.Is(err, models.ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	observability.RequestsTotal.WithLabelValues(op, result).Inc()
}
