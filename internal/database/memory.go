package database

import (
	"context"
	"sync"
	"time"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
)

// MemoryStore keeps records in insertion order behind a RWMutex. Used by
// tests and single-process dev mode.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*models.FileRecord
	byID    map[models.ID]*models.FileRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[models.ID]*models.FileRecord)}
}

func (m *MemoryStore) Insert(ctx context.Context, rec *models.FileRecord) (models.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *rec
	stored.ID = models.NewID()
	if stored.ParentID == "" {
		stored.ParentID = models.RootID
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	m.records = append(m.records, &stored)
	m.byID[stored.ID] = &stored
	return stored.ID, nil
}

func (m *MemoryStore) FindByID(ctx context.Context, id models.ID, ownerID string) (*models.FileRecord, error) {
	return m.FindOne(ctx, Filter{ID: id, OwnerID: ownerID})
}

func (m *MemoryStore) FindPublicOrOwned(ctx context.Context, id models.ID, ownerID string) (*models.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byID[id]
	if !ok || !rec.VisibleTo(ownerID) {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

func (m *MemoryStore) FindOne(ctx context.Context, filter Filter) (*models.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if filter.ID != "" {
		rec, ok := m.byID[filter.ID]
		if !ok || !filter.matches(rec) {
			return nil, nil
		}
		out := *rec
		return &out, nil
	}
	for _, rec := range m.records {
		if filter.matches(rec) {
			out := *rec
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) List(ctx context.Context, ownerID string, parentID models.ID, page, pageSize int) ([]*models.FileRecord, error) {
	skip, limit, _, err := pageWindow(page, pageSize)
	if err != nil {
		return nil, err
	}
	if parentID == "" {
		parentID = models.RootID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		total int64
		out   = make([]*models.FileRecord, 0, limit)
	)
	for _, rec := range m.records {
		if rec.OwnerID != ownerID || rec.ParentID != parentID {
			continue
		}
		if total >= int64(skip) && len(out) < limit {
			cp := *rec
			out = append(out, &cp)
		}
		total++
	}
	if pastEnd(page, len(out), total) {
		return nil, models.ErrPageOutOfRange
	}
	return out, nil
}

func (m *MemoryStore) UpdateField(ctx context.Context, id models.ID, ownerID, field string, value any) (*models.FileRecord, error) {
	b, err := checkUpdate(field, value)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok || rec.OwnerID != ownerID {
		return nil, nil
	}
	rec.IsPublic = b
	out := *rec
	return &out, nil
}

func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close(ctx context.Context) error { return nil }
