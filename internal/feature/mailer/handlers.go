package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"coin_backend/internal/feature/auth/domain/entity"
	"coin_backend/internal/platform/mail"
	"coin_backend/internal/platform/queue"
)

// SourceMailer is the error-log source of undeliverable emails.
const SourceMailer = "mailer"

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

// UserLookup resolves the recipient of a price alert.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// ErrorRecorder はエラーログを記録します。
type ErrorRecorder interface {
	Record(ctx context.Context, userID *uint, source, message string) error
}

// Handlers はメールタスクを描画して送信します。
type Handlers struct {
	sender  mail.Sender
	users   UserLookup
	appName string
	baseURL string
	logger  *zap.Logger
}

// NewHandlers は新しい Handlers を作成します。
func NewHandlers(sender mail.Sender, users UserLookup, appName, baseURL string, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		sender:  sender,
		users:   users,
		appName: appName,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Register attaches the email task handlers to w.
func (h *Handlers) Register(w *queue.Worker) {
	w.Handle(TaskWelcome, h.welcome)
	w.Handle(TaskPasswordReset, h.passwordReset)
	w.Handle(TaskPriceAlert, h.priceAlert)
}

func (h *Handlers) welcome(ctx context.Context, task queue.Task) error {
	var p WelcomePayload
	if err := task.Decode(&p); err != nil {
		return backoff.Permanent(err)
	}
	data := map[string]any{"AppName": h.appName, "Username": p.Username, "BaseURL": h.baseURL}
	return h.send(ctx, p.Email, "Welcome to "+h.appName, "welcome", data)
}

func (h *Handlers) passwordReset(ctx context.Context, task queue.Task) error {
	var p PasswordResetPayload
	if err := task.Decode(&p); err != nil {
		return backoff.Permanent(err)
	}
	data := map[string]any{"Username": p.Username, "Link": h.resetLink(p.Token)}
	return h.send(ctx, p.Email, "Password Reset Request", "password_reset", data)
}

func (h *Handlers) priceAlert(ctx context.Context, task queue.Task) error {
	var p PriceAlertPayload
	if err := task.Decode(&p); err != nil {
		return backoff.Permanent(err)
	}
	user, err := h.users.FindByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("find alert recipient %d: %w", p.UserID, err)
	}
	data := map[string]any{
		"Username":      user.Username,
		"Coin":          p.Coin,
		"Currency":      p.Currency,
		"Previous":      p.Previous.String(),
		"Current":       p.Current.String(),
		"ChangePercent": p.ChangePercent.String(),
		"ObservedAt":    p.ObservedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
	}
	subject := fmt.Sprintf("%s price alert: %s%%", p.Coin, p.ChangePercent.String())
	return h.send(ctx, user.Email, subject, "price_alert", data)
}

func (h *Handlers) resetLink(token string) string {
	return h.baseURL + "/password-reset/confirm?token=" + url.QueryEscape(token)
}

func (h *Handlers) send(ctx context.Context, to, subject, name string, data any) error {
	var text, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return backoff.Permanent(fmt.Errorf("render %s text: %w", name, err))
	}
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html", data); err != nil {
		return backoff.Permanent(fmt.Errorf("render %s html: %w", name, err))
	}
	return h.sender.Send(ctx, mail.Message{To: to, Subject: subject, Text: text.String(), HTML: html.String()})
}

// RecordExhausted returns a worker hook that stores an error log entry for
// tasks that failed every attempt. Email tasks use SourceMailer.
func RecordExhausted(errs ErrorRecorder, logger *zap.Logger) queue.ExhaustedFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task queue.Task, cause error) {
		source := "worker"
		if strings.HasPrefix(task.Type, "email.") {
			source = SourceMailer
		}
		var owner *uint
		if task.Type == TaskPriceAlert {
			var p PriceAlertPayload
			if task.Decode(&p) == nil && p.UserID > 0 {
				owner = &p.UserID
			}
		}
		msg := fmt.Sprintf("task %s (%s) failed: %v", task.ID, task.Type, cause)
		if err := errs.Record(ctx, owner, source, msg); err != nil {
			logger.Error("failed to record exhausted task", zap.String("task_id", task.ID), zap.Error(err))
		}
	}
}
