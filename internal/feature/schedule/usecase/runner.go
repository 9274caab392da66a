package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"coin_backend/internal/feature/schedule/domain/entity"
	"coin_backend/internal/shared/events"
	"coin_backend/internal/shared/ratelimiter"
)

// SourceScraper is the error-log source of failed scheduled scrapes.
const SourceScraper = "scraper"

// PriceFetcher は外部APIから現在価格を取得します。
type PriceFetcher interface {
	SpotPrice(ctx context.Context, coin, currency string) (decimal.Decimal, error)
}

// PriceRecorder は取得した価格を価格ログに記録します。
type PriceRecorder interface {
	LastPrice(ctx context.Context, userID uint, coin, currency string) (decimal.Decimal, bool, error)
	Record(ctx context.Context, userID uint, coin, currency string, price decimal.Decimal) error
}

// NotifyPolicy はユーザー設定に基づいて通知の要否を判定します。
type NotifyPolicy interface {
	ShouldNotify(ctx context.Context, userID uint, previous, next decimal.Decimal) (bool, error)
}

// AlertSink は価格アラートの送信先です（メール、Kafkaなど）。
type AlertSink interface {
	PriceAlert(ctx context.Context, alert events.PriceAlert) error
}

// ActivityRecorder はユーザーのアクティビティを記録します。
type ActivityRecorder interface {
	Record(ctx context.Context, userID uint, action string) error
}

// ErrorRecorder はエラーログを記録します。
type ErrorRecorder interface {
	Record(ctx context.Context, userID *uint, source, message string) error
}

// RunResult は1回のティックの実行結果です。
type RunResult struct {
	Due    int
	Ran    int
	Failed int
	Alerts int
}

// Runner は期限を迎えたスケジュールを実行します。
// 外部APIから価格を取得して価格ログに記録し、閾値を超えた変動があれば通知します。
type Runner struct {
	schedules   ScheduleRepository
	fetcher     PriceFetcher
	prices      PriceRecorder
	policy      NotifyPolicy
	alerts      []AlertSink
	activity    ActivityRecorder
	errs        ErrorRecorder
	rateLimiter ratelimiter.RateLimiterInterface
	logger      *zap.Logger
	now         func() time.Time
}

// RunnerDeps はRunnerの依存関係です。Alerts, Activity, Errors は省略できます。
type RunnerDeps struct {
	Schedules   ScheduleRepository
	Fetcher     PriceFetcher
	Prices      PriceRecorder
	Policy      NotifyPolicy
	Alerts      []AlertSink
	Activity    ActivityRecorder
	Errors      ErrorRecorder
	RateLimiter ratelimiter.RateLimiterInterface
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewRunner は新しい Runner を作成します。
func NewRunner(d RunnerDeps) *Runner {
	r := &Runner{
		schedules:   d.Schedules,
		fetcher:     d.Fetcher,
		prices:      d.Prices,
		policy:      d.Policy,
		alerts:      d.Alerts,
		activity:    d.Activity,
		errs:        d.Errors,
		rateLimiter: d.RateLimiter,
		logger:      d.Logger,
		now:         d.Now,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.now == nil {
		r.now = func() time.Time { return time.Now().UTC() }
	}
	return r
}

type priceKey struct{ coin, currency string }

// RunDue は全ユーザーの期限を迎えたスケジュールを実行します。
// 1件の失敗で処理を止めずにエラーログに記録し、次のスケジュールへ進みます。
// 同じティック内で同じ coin/currency の価格は1回だけ取得します。
func (r *Runner) RunDue(ctx context.Context) (RunResult, error) {
	var res RunResult
	rows, err := r.schedules.List(ctx, Filter{ActiveOnly: true})
	if err != nil {
		return res, fmt.Errorf("list schedules: %w", err)
	}
	due := dueAt(rows, r.now())
	res.Due = len(due)

	fetched := make(map[priceKey]decimal.Decimal)
	for i := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		s := &due[i]
		alerted, err := r.runOne(ctx, s, fetched)
		if err != nil {
			res.Failed++
			r.logger.Error("scheduled scrape failed",
				zap.Uint("schedule_id", s.ID),
				zap.String("coin", s.Coin),
				zap.String("currency", s.Currency),
				zap.Error(err))
			r.recordError(ctx, s, err)
			continue
		}
		res.Ran++
		if alerted {
			res.Alerts++
		}
	}
	if res.Due > 0 {
		r.logger.Info("scheduled scrapes finished",
			zap.Int("due", res.Due),
			zap.Int("ran", res.Ran),
			zap.Int("failed", res.Failed),
			zap.Int("alerts", res.Alerts))
	}
	return res, nil
}

func (r *Runner) runOne(ctx context.Context, s *entity.ScheduledScrape, fetched map[priceKey]decimal.Decimal) (bool, error) {
	key := priceKey{s.Coin, s.Currency}
	price, ok := fetched[key]
	if !ok {
		if r.rateLimiter != nil {
			if err := r.rateLimiter.Wait(ctx); err != nil {
				return false, err
			}
		}
		p, err := r.fetcher.SpotPrice(ctx, s.Coin, s.Currency)
		if err != nil {
			return false, fmt.Errorf("fetch %s/%s: %w", s.Coin, s.Currency, err)
		}
		price = p
		fetched[key] = p
	}

	previous, hadPrevious, err := r.prices.LastPrice(ctx, s.UserID, s.Coin, s.Currency)
	if err != nil {
		return false, fmt.Errorf("last price: %w", err)
	}
	if err := r.prices.Record(ctx, s.UserID, s.Coin, s.Currency, price); err != nil {
		return false, fmt.Errorf("record price: %w", err)
	}

	now := r.now()
	if err := markRun(s, now); err != nil {
		return false, err
	}
	if err := r.schedules.Update(ctx, s); err != nil {
		return false, fmt.Errorf("mark run: %w", err)
	}

	if r.activity != nil {
		action := fmt.Sprintf("scraped %s/%s", s.Coin, s.Currency)
		if err := r.activity.Record(ctx, s.UserID, action); err != nil {
			r.logger.Warn("failed to record activity", zap.Uint("user_id", s.UserID), zap.Error(err))
		}
	}

	if !hadPrevious || r.policy == nil {
		return false, nil
	}
	notify, err := r.policy.ShouldNotify(ctx, s.UserID, previous, price)
	if err != nil {
		r.logger.Warn("failed to evaluate notification policy", zap.Uint("user_id", s.UserID), zap.Error(err))
		return false, nil
	}
	if !notify {
		return false, nil
	}
	alert := events.NewPriceAlert(s.UserID, s.Coin, s.Currency, previous, price, now)
	for _, sink := range r.alerts {
		// 通知の失敗はスクレイプの成否に影響させない
		if err := sink.PriceAlert(ctx, alert); err != nil {
			r.logger.Warn("failed to deliver price alert",
				zap.Uint("user_id", s.UserID),
				zap.String("coin", s.Coin),
				zap.Error(err))
		}
	}
	return true, nil
}

func (r *Runner) recordError(ctx context.Context, s *entity.ScheduledScrape, cause error) {
	if r.errs == nil {
		return
	}
	userID := s.UserID
	msg := fmt.Sprintf("schedule %d (%s/%s): %v", s.ID, s.Coin, s.Currency, cause)
	if err := r.errs.Record(ctx, &userID, SourceScraper, msg); err != nil {
		r.logger.Warn("failed to record error log", zap.Error(err))
	}
}
