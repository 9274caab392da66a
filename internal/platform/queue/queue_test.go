package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

type emailPayload struct {
	To string `json:"to"`
}

func TestNewTask(t *testing.T) {
	task, err := NewTask("email", emailPayload{To: "a@example.com"})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "email", task.Type)
	var p emailPayload
	require.NoError(t, task.Decode(&p))
	assert.Equal(t, "a@example.com", p.To)

	_, err = NewTask("bad", make(chan int))
	assert.Error(t, err)
}

func TestRedisQueue_FIFO(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewRedisQueue(client, "coin:queue:tasks")
	ctx := context.Background()

	first, _ := NewTask("email", emailPayload{To: "first@example.com"})
	second, _ := NewTask("email", emailPayload{To: "second@example.com"})
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	got, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestRedisQueue_DequeueEmpty(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewRedisQueue(client, "empty")

	got, err := q.Dequeue(context.Background(), 100*time.Millisecond)

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisQueue_DequeueCorrupt(t *testing.T) {
	client, mr := setupTestRedis(t)
	q := NewRedisQueue(client, "corrupt")
	_, err := mr.Lpush("corrupt", "{not json")
	require.NoError(t, err)

	_, err = q.Dequeue(context.Background(), time.Second)

	assert.ErrorContains(t, err, "decode task")
}

func TestLocalQueue(t *testing.T) {
	q := NewLocalQueue(1)
	ctx := context.Background()
	task, _ := NewTask("email", emailPayload{})

	require.NoError(t, q.Enqueue(ctx, task))
	assert.ErrorIs(t, q.Enqueue(ctx, task), ErrQueueFull)
	assert.Equal(t, 1, q.Len())

	got, err := q.Dequeue(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	got, err = q.Dequeue(ctx, 10*time.Millisecond)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

var fastRetry = RetryPolicy{MaxAttempts: 3, Initial: time.Millisecond, Max: 5 * time.Millisecond}

func TestWorker_Process(t *testing.T) {
	tests := []struct {
		name          string
		failures      int
		permanent     bool
		wantErr       bool
		wantCalls     int32
		wantExhausted bool
	}{
		{name: "success first try", failures: 0, wantCalls: 1},
		{name: "success after retries", failures: 2, wantCalls: 3},
		{name: "exhausted after max attempts", failures: 5, wantErr: true, wantCalls: 3, wantExhausted: true},
		{name: "permanent error stops retries", failures: 5, permanent: true, wantErr: true, wantCalls: 1, wantExhausted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			var exhausted error
			w := NewWorker(WorkerDeps{
				Source: NewLocalQueue(1),
				Retry:  fastRetry,
				OnExhausted: func(_ context.Context, _ Task, err error) {
					exhausted = err
				},
				Logger: zap.NewNop(),
			})
			w.Handle("email", func(context.Context, Task) error {
				n := calls.Add(1)
				if int(n) <= tt.failures {
					if tt.permanent {
						return backoff.Permanent(errors.New("bad payload"))
					}
					return errors.New("smtp down")
				}
				return nil
			})

			task, _ := NewTask("email", emailPayload{})
			err := w.Process(context.Background(), task)

			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.wantCalls, calls.Load())
			assert.Equal(t, tt.wantExhausted, exhausted != nil)
		})
	}
}

func TestWorker_ProcessUnknownType(t *testing.T) {
	w := NewWorker(WorkerDeps{Source: NewLocalQueue(1)})
	task, _ := NewTask("nope", nil)

	err := w.Process(context.Background(), task)

	assert.ErrorContains(t, err, `unknown task type "nope"`)
}

func TestWorker_Run(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewRedisQueue(client, "coin:queue:tasks")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan string, 2)
	w := NewWorker(WorkerDeps{Source: q, Concurrency: 2, PollTimeout: 100 * time.Millisecond, Retry: fastRetry})
	w.Handle("email", func(_ context.Context, task Task) error {
		var p emailPayload
		if err := task.Decode(&p); err != nil {
			return err
		}
		done <- p.To
		return nil
	})

	for _, to := range []string{"a@example.com", "b@example.com"} {
		task, _ := NewTask("email", emailPayload{To: to})
		require.NoError(t, q.Enqueue(ctx, task))
	}

	stopped := make(chan error, 1)
	go func() { stopped <- w.Run(ctx) }()

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case to := <-done:
			got[to] = true
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for tasks")
		}
	}
	assert.Equal(t, map[string]bool{"a@example.com": true, "b@example.com": true}, got)

	cancel()
	select {
	case err := <-stopped:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
