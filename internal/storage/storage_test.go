package storage_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "files_manager")
	blobs := storage.NewFilesystemStorage(root)

	content := []byte("Hello, files manager!\x00\xff")
	localPath, err := blobs.Put(content)
	require.NoError(t, err)
	assert.Equal(t, root, filepath.Dir(localPath))

	got, err := blobs.Get(localPath)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	rc, err := blobs.Open(localPath)
	require.NoError(t, err)
	defer rc.Close()
	streamed, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, streamed)
}

func TestPutSameContentTwice(t *testing.T) {
	blobs := storage.NewFilesystemStorage(t.TempDir())

	first, err := blobs.Put([]byte("same"))
	require.NoError(t, err)
	second, err := blobs.Put([]byte("same"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPutEmptyData(t *testing.T) {
	blobs := storage.NewFilesystemStorage(t.TempDir())

	localPath, err := blobs.Put(nil)
	require.NoError(t, err)

	got, err := blobs.Get(localPath)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetMissing(t *testing.T) {
	blobs := storage.NewFilesystemStorage(t.TempDir())

	_, err := blobs.Get(filepath.Join(blobs.BasePath(), "nope"))
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = blobs.Open(filepath.Join(blobs.BasePath(), "nope"))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPutUnwritableRoot(t *testing.T) {
	// A regular file where the directory should be.
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	blobs := storage.NewFilesystemStorage(filepath.Join(blocker, "files"))
	_, err := blobs.Put([]byte("data"))
	assert.ErrorIs(t, err, models.ErrBlobIO)
}

func TestDerivativePath(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"/tmp/files_manager/5f1c", 100, "/tmp/files_manager/5f1c_100"},
		{"/tmp/files_manager/photo.png", 250, "/tmp/files_manager/photo_250.png"},
		{"/data/a.b.jpg", 500, "/data/a.b_500.jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, storage.DerivativePath(tt.in, tt.width))
	}
}

func TestWriteAtomicOverwrites(t *testing.T) {
	blobs := storage.NewFilesystemStorage(t.TempDir())
	target := filepath.Join(blobs.BasePath(), "thumb_100")

	for _, body := range []string{"first", "second"} {
		err := blobs.WriteAtomic(target, func(w io.Writer) error {
			_, err := io.WriteString(w, body)
			return err
		})
		require.NoError(t, err)
	}

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(blobs.BasePath())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteAtomicFailureKeepsPrevious(t *testing.T) {
	blobs := storage.NewFilesystemStorage(t.TempDir())
	target := filepath.Join(blobs.BasePath(), "thumb_250")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

	err := blobs.WriteAtomic(target, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}
