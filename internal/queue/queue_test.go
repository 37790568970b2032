package queue_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/queue"
)

func TestDecodeThumbnailJob(t *testing.T) {
	id := models.NewID()

	job, err := queue.DecodeThumbnailJob([]byte(`{"fileId":"` + string(id) + `","userId":"u1"}`))
	require.NoError(t, err)
	assert.Equal(t, id, job.FileID)
	assert.Equal(t, "u1", job.OwnerID)

	for name, payload := range map[string]string{
		"not json":      `{`,
		"missing file":  `{"userId":"u1"}`,
		"missing owner": `{"fileId":"` + string(id) + `"}`,
		"bad file id":   `{"fileId":"../../etc","userId":"u1"}`,
		"root file id":  `{"fileId":"0","userId":"u1"}`,
	} {
		_, err := queue.DecodeThumbnailJob([]byte(payload))
		assert.ErrorIs(t, err, models.ErrFatalJob, name)
	}
}

func TestThumbnailJobMarshalRoundTrip(t *testing.T) {
	in := queue.ThumbnailJob{FileID: models.NewID(), OwnerID: "owner"}
	data, err := in.Marshal()
	require.NoError(t, err)

	out, err := queue.DecodeThumbnailJob(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMemoryQueue(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemoryQueue(2)
	job := queue.ThumbnailJob{FileID: models.NewID(), OwnerID: "u"}

	require.NoError(t, q.EnqueueThumbnail(ctx, job))
	require.NoError(t, q.EnqueueThumbnail(ctx, job))
	assert.ErrorIs(t, q.EnqueueThumbnail(ctx, job), queue.ErrQueueFull)
	assert.Equal(t, 2, q.Len())

	got := <-q.Consume()
	assert.Equal(t, job, got)
	assert.Equal(t, 1, q.Len())
}
