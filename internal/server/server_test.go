package server_test

import (
	"context"
	"encoding/base64"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/database"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/observability"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/queue"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/server"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/service"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/session"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/storage"
)

const (
	bufSize    = 1024 * 1024
	testUserID = "550e8400-e29b-41d4-a716-446655440000"
)

func setupTestServer(t *testing.T) (*server.Client, *server.Client, func()) {
	t.Helper()

	files := service.NewFileManager(
		database.NewMemoryStore(),
		storage.NewFilesystemStorage(t.TempDir()),
		session.NewMemoryStore(100, time.Hour),
		queue.NewMemoryQueue(16),
		zap.NewNop(),
		service.Options{},
	)
	token, err := files.Connect(context.Background(), testUserID)
	require.NoError(t, err)

	mc, err := observability.InitMetrics()
	require.NoError(t, err)

	lis := bufconn.Listen(bufSize)
	srv := server.NewGRPCServer(files, zap.NewNop(), mc, 0)
	go func() {
		if err := srv.Serve(lis); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	cleanup := func() {
		conn.Close()
		srv.Stop()
	}
	client := server.NewClient(conn, token)
	return client, client.WithToken(""), cleanup
}

func TestFileServiceFlow(t *testing.T) {
	client, anon, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	docs, err := client.Upload(ctx, &server.UploadRequest{Name: "docs", Type: "folder"})
	require.NoError(t, err)
	assert.NotEmpty(t, docs.ID)
	assert.Empty(t, docs.LocalPath)

	content := []byte("Hello, gRPC!")
	file, err := client.Upload(ctx, &server.UploadRequest{
		Name:     "hello.txt",
		Type:     "file",
		ParentID: docs.ID.String(),
		Data:     base64.StdEncoding.EncodeToString(content),
	})
	require.NoError(t, err)
	assert.Equal(t, docs.ID, file.ParentID)

	shown, err := client.Show(ctx, file.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", shown.Name)

	recs, err := client.Index(ctx, docs.ID.String(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, file.ID, recs[0].ID)

	_, err = anon.Data(ctx, file.ID.String(), 0)
	assert.Equal(t, codes.NotFound, status.Code(err))

	published, err := client.Publish(ctx, file.ID.String())
	require.NoError(t, err)
	assert.True(t, published.IsPublic)

	data, err := anon.Data(ctx, file.ID.String(), 0)
	require.NoError(t, err)
	assert.Equal(t, content, data.Data)
	assert.Equal(t, "hello.txt", data.Name)
	assert.Contains(t, data.ContentType, "text/plain")

	unpublished, err := client.Unpublish(ctx, file.ID.String())
	require.NoError(t, err)
	assert.False(t, unpublished.IsPublic)

	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Files)

	st, err := client.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.DB)
	assert.True(t, st.Sessions)
}

func TestFileServiceErrorCodes(t *testing.T) {
	client, anon, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	_, err := anon.Index(ctx, "", 0)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.Upload(ctx, &server.UploadRequest{Type: "folder"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "Missing name", status.Convert(err).Message())

	_, err = client.Show(ctx, "not-an-id")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Show(ctx, models.NewID().String())
	assert.Equal(t, codes.NotFound, status.Code(err))

	recs, err := client.Index(ctx, "", 3)
	require.NoError(t, err)
	assert.Empty(t, recs)

	for i := 0; i < 3; i++ {
		_, err := client.Upload(ctx, &server.UploadRequest{Name: "f", Type: "folder"})
		require.NoError(t, err)
	}
	_, err = client.Index(ctx, "", 1)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestDisconnect(t *testing.T) {
	client, _, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, client.Disconnect(ctx))

	_, err := client.Index(ctx, "", 0)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, codes.Unauthenticated, status.Code(client.Disconnect(ctx)))
}
