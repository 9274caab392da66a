// Package queue は非同期タスクのキューとワーカーを提供します。
// リクエスト処理はタスクを積むだけで、配送はワーカーが行います。
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrQueueFull is returned by LocalQueue when its buffer is full.
var ErrQueueFull = errors.New("queue is full")

// Task はキューに積まれる1件の処理依頼です。
type Task struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewTask encodes payload as JSON and assigns a random id.
func NewTask(taskType string, payload any) (Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Task{}, fmt.Errorf("encode %s payload: %w", taskType, err)
	}
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into v.
func (t Task) Decode(v any) error {
	if err := json.Unmarshal(t.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", t.Type, err)
	}
	return nil
}

// Enqueuer はタスクを積む側のインターフェースです。
type Enqueuer interface {
	Enqueue(ctx context.Context, task Task) error
}

// Source はワーカーがタスクを取り出す側のインターフェースです。
// タイムアウトまでにタスクが無ければ nil, nil を返します。
type Source interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*Task, error)
}
