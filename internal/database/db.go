package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
)

// PostgresDB keeps FileRecords in a "files" table. The seq column preserves
// insertion order for listings.
type PostgresDB struct {
	db *sql.DB
}

func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgresDB{db: db}, nil
}

// EnsureSchema creates the files table if needed.
func (p *PostgresDB) EnsureSchema(ctx context.Context) error {
	const stmt = `
CREATE TABLE IF NOT EXISTS files (
	seq        BIGSERIAL,
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL,
	is_public  BOOLEAN NOT NULL DEFAULT FALSE,
	parent_id  TEXT NOT NULL,
	local_path TEXT,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_files_owner_parent ON files(user_id, parent_id, seq);`
	if _, err := p.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const selectColumns = `id, user_id, name, type, is_public, parent_id, COALESCE(local_path, ''), created_at`

func (p *PostgresDB) Insert(ctx context.Context, rec *models.FileRecord) (models.ID, error) {
	id := models.NewID()
	parent := rec.ParentID
	if parent == "" {
		parent = models.RootID
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	var localPath sql.NullString
	if rec.LocalPath != "" {
		localPath = sql.NullString{String: rec.LocalPath, Valid: true}
	}

	query := `
        INSERT INTO files (id, user_id, name, type, is_public, parent_id, local_path, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := p.db.ExecContext(ctx, query,
		string(id),
		rec.OwnerID,
		rec.Name,
		string(rec.Kind),
		rec.IsPublic,
		string(parent),
		localPath,
		created,
	)
	if err != nil {
		return "", storeErr("insert file", err)
	}
	return id, nil
}

func (p *PostgresDB) FindByID(ctx context.Context, id models.ID, ownerID string) (*models.FileRecord, error) {
	return p.FindOne(ctx, Filter{ID: id, OwnerID: ownerID})
}

func (p *PostgresDB) FindPublicOrOwned(ctx context.Context, id models.ID, ownerID string) (*models.FileRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM files WHERE id = $1 AND (is_public OR user_id = $2)`
	return p.scanOne(p.db.QueryRowContext(ctx, query, string(id), ownerID))
}

func (p *PostgresDB) FindOne(ctx context.Context, filter Filter) (*models.FileRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM files
        WHERE ($1::text = '' OR id = $1) AND ($2::text = '' OR user_id = $2) AND ($3::text = '' OR type = $3)
        ORDER BY seq LIMIT 1`
	row := p.db.QueryRowContext(ctx, query, string(filter.ID), filter.OwnerID, string(filter.Kind))
	return p.scanOne(row)
}

func (p *PostgresDB) scanOne(row *sql.Row) (*models.FileRecord, error) {
	file, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // File not found
	}
	if err != nil {
		return nil, storeErr("select file", err)
	}
	return file, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.FileRecord, error) {
	var (
		file         models.FileRecord
		id, parentID string
		kind         string
	)
	err := row.Scan(&id, &file.OwnerID, &file.Name, &kind, &file.IsPublic, &parentID, &file.LocalPath, &file.CreatedAt)
	if err != nil {
		return nil, err
	}
	file.ID = models.ID(id)
	file.ParentID = models.ID(parentID)
	file.Kind = models.Kind(kind)
	return &file, nil
}

func (p *PostgresDB) List(ctx context.Context, ownerID string, parentID models.ID, page, pageSize int) ([]*models.FileRecord, error) {
	offset, limit, beyond, err := pageWindow(page, pageSize)
	if err != nil {
		return nil, err
	}
	if parentID == "" {
		parentID = models.RootID
	}

	files := make([]*models.FileRecord, 0, limit)
	if !beyond {
		files, err = p.listPage(ctx, ownerID, parentID, limit, offset)
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 && page > 0 {
		var total int64
		err := p.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM files WHERE user_id = $1 AND parent_id = $2`,
			ownerID, string(parentID),
		).Scan(&total)
		if err != nil {
			return nil, storeErr("count files", err)
		}
		if pastEnd(page, 0, total) {
			return nil, models.ErrPageOutOfRange
		}
	}
	return files, nil
}

func (p *PostgresDB) listPage(ctx context.Context, ownerID string, parentID models.ID, limit, offset int) ([]*models.FileRecord, error) {
	query := `
        SELECT ` + selectColumns + `
        FROM files
        WHERE user_id = $1 AND parent_id = $2
        ORDER BY seq
        LIMIT $3 OFFSET $4
    `
	rows, err := p.db.QueryContext(ctx, query, ownerID, string(parentID), limit, offset)
	if err != nil {
		return nil, storeErr("list files", err)
	}
	defer rows.Close()

	files := make([]*models.FileRecord, 0, limit)
	for rows.Next() {
		f, err := scanRecord(rows)
		if err != nil {
			return nil, storeErr("scan file", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list files", err)
	}
	return files, nil
}

func (p *PostgresDB) UpdateField(ctx context.Context, id models.ID, ownerID, field string, value any) (*models.FileRecord, error) {
	b, err := checkUpdate(field, value)
	if err != nil {
		return nil, err
	}
	query := `
        UPDATE files
        SET is_public = $1
        WHERE id = $2 AND user_id = $3
        RETURNING ` + selectColumns
	return p.scanOne(p.db.QueryRowContext(ctx, query, b, string(id), ownerID))
}

func (p *PostgresDB) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, storeErr("count files", err)
	}
	return n, nil
}

func (p *PostgresDB) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

func (p *PostgresDB) Close(ctx context.Context) error {
	return p.db.Close()
}
