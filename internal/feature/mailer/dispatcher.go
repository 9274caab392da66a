// Package mailer queues account and alert emails and renders them in the worker.
package mailer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"coin_backend/internal/feature/auth/domain/entity"
	"coin_backend/internal/platform/queue"
	"coin_backend/internal/shared/events"
)

// Task types handled by Handlers.
const (
	TaskWelcome       = "email.welcome"
	TaskPasswordReset = "email.password_reset"
	TaskPriceAlert    = "email.price_alert"
)

// WelcomePayload is the payload of TaskWelcome.
type WelcomePayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// PasswordResetPayload is the payload of TaskPasswordReset.
type PasswordResetPayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// PriceAlertPayload is the payload of TaskPriceAlert. The recipient is
// resolved from UserID when the task runs.
type PriceAlertPayload struct {
	UserID        uint            `json:"user_id"`
	Coin          string          `json:"coin"`
	Currency      string          `json:"currency"`
	Previous      decimal.Decimal `json:"previous"`
	Current       decimal.Decimal `json:"current"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	ObservedAt    time.Time       `json:"observed_at"`
}

// Dispatcher はメール送信をタスクとしてキューに積みます。
// リクエスト処理がSMTPの応答を待つことはありません。
type Dispatcher struct {
	q queue.Enqueuer
}

// NewDispatcher は新しい Dispatcher を作成します。
func NewDispatcher(q queue.Enqueuer) *Dispatcher {
	return &Dispatcher{q: q}
}

func (d *Dispatcher) enqueue(ctx context.Context, taskType string, payload any) error {
	task, err := queue.NewTask(taskType, payload)
	if err != nil {
		return err
	}
	return d.q.Enqueue(ctx, task)
}

// Welcome queues the welcome email. It has the signature of an auth post-create hook.
func (d *Dispatcher) Welcome(ctx context.Context, user *entity.User) error {
	return d.enqueue(ctx, TaskWelcome, WelcomePayload{Email: user.Email, Username: user.Username})
}

// SendPasswordReset queues the password reset email.
func (d *Dispatcher) SendPasswordReset(ctx context.Context, email, username, token string) error {
	return d.enqueue(ctx, TaskPasswordReset, PasswordResetPayload{Email: email, Username: username, Token: token})
}

// PriceAlert queues an alert email to the schedule's owner.
func (d *Dispatcher) PriceAlert(ctx context.Context, a events.PriceAlert) error {
	return d.enqueue(ctx, TaskPriceAlert, PriceAlertPayload{
		UserID:        a.UserID,
		Coin:          a.Coin,
		Currency:      a.Currency,
		Previous:      a.Previous,
		Current:       a.Current,
		ChangePercent: a.ChangePercent,
		ObservedAt:    a.ObservedAt,
	})
}
