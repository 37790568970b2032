package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// AsynqQueue enqueues thumbnail jobs into Redis through asynq.
type AsynqQueue struct {
	client   *asynq.Client
	maxRetry int
}

func NewAsynqQueue(client *asynq.Client, maxRetry int) *AsynqQueue {
	return &AsynqQueue{client: client, maxRetry: maxRetry}
}

func (q *AsynqQueue) EnqueueThumbnail(ctx context.Context, job ThumbnailJob) error {
	data, err := job.Marshal()
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeThumbnail, data)
	if _, err := q.client.EnqueueContext(ctx, task, asynq.MaxRetry(q.maxRetry), asynq.Queue(QueueName)); err != nil {
		return fmt.Errorf("enqueue thumbnail task: %w", err)
	}
	return nil
}

func (q *AsynqQueue) Close() error {
	return q.client.Close()
}
