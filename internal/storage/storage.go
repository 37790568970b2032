package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
	"github.com/google/uuid"
)

// FilesystemStorage stores blobs on local disk, one file per blob.
type FilesystemStorage struct {
	basePath string // e.g., "/tmp/files_manager"
}

// NewFilesystemStorage does not touch the disk; the directory is created on
// the first write.
func NewFilesystemStorage(basePath string) *FilesystemStorage {
	return &FilesystemStorage{basePath: basePath}
}

func (fs *FilesystemStorage) BasePath() string {
	return fs.basePath
}

// Put writes data under a fresh random name and returns its path. Identical
// content produces distinct blobs.
func (fs *FilesystemStorage) Put(data []byte) (string, error) {
	if err := os.MkdirAll(fs.basePath, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", models.ErrBlobIO, fs.basePath, err)
	}
	localPath := filepath.Join(fs.basePath, uuid.NewString())
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("%w: write %s: %v", models.ErrBlobIO, localPath, err)
	}
	return localPath, nil
}

func (fs *FilesystemStorage) Get(localPath string) ([]byte, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, wrapReadErr(localPath, err)
	}
	return data, nil
}

func (fs *FilesystemStorage) Open(localPath string) (io.ReadCloser, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, wrapReadErr(localPath, err)
	}
	return f, nil
}

// DerivativePath names the resized copy of localPath at the given width:
// <dir>/<base>_<width><ext>.
func DerivativePath(localPath string, width int) string {
	ext := filepath.Ext(localPath)
	base := strings.TrimSuffix(filepath.Base(localPath), ext)
	return filepath.Join(filepath.Dir(localPath), base+"_"+strconv.Itoa(width)+ext)
}

// WriteAtomic replaces path with whatever write produces. Content goes to a
// temp file in the same directory and is renamed into place, so readers and
// concurrent writers never observe a partial file.
func (fs *FilesystemStorage) WriteAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", models.ErrBlobIO, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", models.ErrBlobIO, err)
	}
	tmpName := tmp.Name()
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", models.ErrBlobIO, tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename to %s: %v", models.ErrBlobIO, path, err)
	}
	return nil
}

func wrapReadErr(localPath string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob %s: %w", localPath, models.ErrNotFound)
	}
	return fmt.Errorf("%w: read %s: %v", models.ErrBlobIO, localPath, err)
}
