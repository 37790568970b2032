package database

import (
	"context"
	"fmt"
	"math"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
)

// DefaultPageSize is the number of records per listing page.
const DefaultPageSize = 20

// Store is the metadata collection of FileRecords. Lookups that find
// nothing return (nil, nil); backend failures wrap models.ErrStore.
type Store interface {
	Insert(ctx context.Context, rec *models.FileRecord) (models.ID, error)
	FindByID(ctx context.Context, id models.ID, ownerID string) (*models.FileRecord, error)
	FindPublicOrOwned(ctx context.Context, id models.ID, ownerID string) (*models.FileRecord, error)
	FindOne(ctx context.Context, filter Filter) (*models.FileRecord, error)
	List(ctx context.Context, ownerID string, parentID models.ID, page, pageSize int) ([]*models.FileRecord, error)
	UpdateField(ctx context.Context, id models.ID, ownerID, field string, value any) (*models.FileRecord, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Filter selects records by exact match. Zero fields are ignored.
type Filter struct {
	ID      models.ID
	OwnerID string
	Kind    models.Kind
}

func (f Filter) matches(rec *models.FileRecord) bool {
	if f.ID != "" && rec.ID != f.ID {
		return false
	}
	if f.OwnerID != "" && rec.OwnerID != f.OwnerID {
		return false
	}
	if f.Kind != "" && rec.Kind != f.Kind {
		return false
	}
	return true
}

func checkUpdate(field string, value any) (bool, error) {
	if field != models.FieldIsPublic {
		return false, fmt.Errorf("update field %q: not updatable", field)
	}
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("update field %q: want bool, got %T", field, value)
	}
	return b, nil
}

// pageWindow validates paging arguments and returns skip and limit. beyond
// is set when the skip does not fit in an int; such a page holds no records
// and the backend query can be skipped.
func pageWindow(page, pageSize int) (skip, limit int, beyond bool, err error) {
	if page < 0 {
		return 0, 0, false, &models.ValidationError{Field: "page", Reason: "Invalid page"}
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page > math.MaxInt/pageSize {
		return math.MaxInt, pageSize, true, nil
	}
	return page * pageSize, pageSize, false, nil
}

// pastEnd decides whether an empty page means the caller paged too far.
func pastEnd(page, got int, total int64) bool {
	return page > 0 && got == 0 && total > 0
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", models.ErrStore, op, err)
}
