package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Handler processes one task. Returning an error schedules a retry; wrap it
// with backoff.Permanent to give up immediately.
type Handler func(ctx context.Context, task Task) error

// ExhaustedFunc is called once a task has failed MaxAttempts times.
type ExhaustedFunc func(ctx context.Context, task Task, err error)

// RetryPolicy bounds the retries of a failed task.
type RetryPolicy struct {
	MaxAttempts int
	Initial     time.Duration
	Max         time.Duration
}

// DefaultRetryPolicy is three attempts with exponential backoff up to 30s.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Initial: time.Second, Max: 30 * time.Second}

// WorkerDeps はWorkerの依存関係です。
type WorkerDeps struct {
	Source      Source
	Concurrency int
	PollTimeout time.Duration
	Retry       RetryPolicy
	OnExhausted ExhaustedFunc
	Logger      *zap.Logger
}

// Worker はキューからタスクを取り出し、種類ごとのハンドラーに渡します。
type Worker struct {
	source      Source
	handlers    map[string]Handler
	concurrency int
	pollTimeout time.Duration
	retry       RetryPolicy
	onExhausted ExhaustedFunc
	logger      *zap.Logger
}

// NewWorker は新しい Worker を作成します。
func NewWorker(d WorkerDeps) *Worker {
	w := &Worker{
		source:      d.Source,
		handlers:    make(map[string]Handler),
		concurrency: d.Concurrency,
		pollTimeout: d.PollTimeout,
		retry:       d.Retry,
		onExhausted: d.OnExhausted,
		logger:      d.Logger,
	}
	if w.concurrency <= 0 {
		w.concurrency = 1
	}
	if w.pollTimeout <= 0 {
		w.pollTimeout = 5 * time.Second
	}
	if w.retry.MaxAttempts <= 0 {
		w.retry = DefaultRetryPolicy
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	return w
}

// Handle registers h for taskType.
func (w *Worker) Handle(taskType string, h Handler) {
	w.handlers[taskType] = h
}

// Run polls the source until ctx is cancelled. In-flight tasks finish
// their current attempt before Run returns.
func (w *Worker) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	wg.Wait()
	return ctx.Err()
}

func (w *Worker) loop(ctx context.Context) {
	for ctx.Err() == nil {
		task, err := w.source.Dequeue(ctx, w.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to dequeue task", zap.Error(err))
			sleep(ctx, w.pollTimeout)
			continue
		}
		if task == nil {
			continue
		}
		_ = w.Process(ctx, *task)
	}
}

// Process runs the handler for task with retries and returns the last error.
// Unknown task types are dropped without retry.
func (w *Worker) Process(ctx context.Context, task Task) error {
	h, ok := w.handlers[task.Type]
	if !ok {
		w.logger.Warn("no handler for task type", zap.String("type", task.Type), zap.String("task_id", task.ID))
		return fmt.Errorf("unknown task type %q", task.Type)
	}

	attempt := 0
	op := func() error {
		attempt++
		return h(ctx, task)
	}
	notify := func(err error, next time.Duration) {
		w.logger.Warn("task failed, retrying",
			zap.String("type", task.Type),
			zap.String("task_id", task.ID),
			zap.Int("attempt", attempt),
			zap.Duration("next", next),
			zap.Error(err))
	}

	err := backoff.RetryNotify(op, w.backOff(ctx), notify)
	if err == nil {
		w.logger.Debug("task done", zap.String("type", task.Type), zap.String("task_id", task.ID), zap.Int("attempts", attempt))
		return nil
	}

	w.logger.Error("task failed",
		zap.String("type", task.Type),
		zap.String("task_id", task.ID),
		zap.Int("attempts", attempt),
		zap.Error(err))
	// シャットダウンで中断した場合は記録しない
	if ctx.Err() == nil && w.onExhausted != nil {
		w.onExhausted(ctx, task, err)
	}
	return err
}

func (w *Worker) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.retry.Initial
	if w.retry.Max > 0 {
		b.MaxInterval = w.retry.Max
	}
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(w.retry.MaxAttempts-1)), ctx)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
