package di

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"coin_backend/internal/app/router"
	activityadapters "coin_backend/internal/feature/activity/adapters"
	activityentity "coin_backend/internal/feature/activity/domain/entity"
	activityhandler "coin_backend/internal/feature/activity/transport/handler"
	activityusecase "coin_backend/internal/feature/activity/usecase"
	authadapters "coin_backend/internal/feature/auth/adapters"
	authentity "coin_backend/internal/feature/auth/domain/entity"
	authhandler "coin_backend/internal/feature/auth/transport/handler"
	authusecase "coin_backend/internal/feature/auth/usecase"
	comparisonadapters "coin_backend/internal/feature/comparison/adapters"
	comparisonentity "coin_backend/internal/feature/comparison/domain/entity"
	comparisonhandler "coin_backend/internal/feature/comparison/transport/handler"
	comparisonusecase "coin_backend/internal/feature/comparison/usecase"
	errorlogadapters "coin_backend/internal/feature/errorlog/adapters"
	errorlogentity "coin_backend/internal/feature/errorlog/domain/entity"
	errorloghandler "coin_backend/internal/feature/errorlog/transport/handler"
	errorlogusecase "coin_backend/internal/feature/errorlog/usecase"
	exchangerateadapters "coin_backend/internal/feature/exchangerate/adapters"
	exchangerateentity "coin_backend/internal/feature/exchangerate/domain/entity"
	exchangeratehandler "coin_backend/internal/feature/exchangerate/transport/handler"
	exchangerateusecase "coin_backend/internal/feature/exchangerate/usecase"
	"coin_backend/internal/feature/logcleanup"
	"coin_backend/internal/feature/mailer"
	preferenceadapters "coin_backend/internal/feature/preference/adapters"
	preferenceentity "coin_backend/internal/feature/preference/domain/entity"
	preferencehandler "coin_backend/internal/feature/preference/transport/handler"
	preferenceusecase "coin_backend/internal/feature/preference/usecase"
	pricelogadapters "coin_backend/internal/feature/pricelog/adapters"
	priceloghandler "coin_backend/internal/feature/pricelog/transport/handler"
	pricelogusecase "coin_backend/internal/feature/pricelog/usecase"
	profileadapters "coin_backend/internal/feature/profile/adapters"
	profileentity "coin_backend/internal/feature/profile/domain/entity"
	profilehandler "coin_backend/internal/feature/profile/transport/handler"
	profileusecase "coin_backend/internal/feature/profile/usecase"
	scheduleadapters "coin_backend/internal/feature/schedule/adapters"
	scheduleentity "coin_backend/internal/feature/schedule/domain/entity"
	schedulehandler "coin_backend/internal/feature/schedule/transport/handler"
	scheduleusecase "coin_backend/internal/feature/schedule/usecase"
	"coin_backend/internal/platform/cache"
	"coin_backend/internal/platform/config"
	platformdb "coin_backend/internal/platform/db"
	platformhandler "coin_backend/internal/platform/http/handler"
	jwtmw "coin_backend/internal/platform/jwt"
	"coin_backend/internal/platform/kafka"
	"coin_backend/internal/platform/lock"
	"coin_backend/internal/platform/logger"
	"coin_backend/internal/platform/mail"
	"coin_backend/internal/platform/queue"
	platformredis "coin_backend/internal/platform/redis"
	"coin_backend/internal/platform/storage"
)

// TaskQueue は積む側と取り出す側の両方を持つキューです。
type TaskQueue interface {
	queue.Enqueuer
	queue.Source
}

// Container holds the components shared by the binaries in cmd/.
type Container struct {
	Cfg    *config.Config
	Logger *zap.Logger
	Sink   *logger.FileSink
	DB     *gorm.DB
	Redis  *redis.Client
	Queue  TaskQueue
	Kafka  *kafka.Producer

	Users     authusecase.UserRepository
	Mailer    *mailer.Dispatcher
	ErrorLogs mailer.ErrorRecorder
	Sessions  *authusecase.SessionPruner

	authHandler *authhandler.AuthHandler
	resources   []router.Resource
	runnerDeps  scheduleusecase.RunnerDeps
}

// Models returns every persisted model for AutoMigrate.
func Models() []any {
	return []any{
		&authentity.User{},
		&authadapters.SessionModel{},
		&profileentity.Profile{},
		&pricelogadapters.PriceLogModel{},
		&preferenceentity.UserPreference{},
		&scheduleentity.ScheduledScrape{},
		&errorlogentity.ErrorLogEntry{},
		&exchangerateentity.ExchangeRateSnapshot{},
		&comparisonentity.CoinComparison{},
		&activityentity.ActivityEntry{},
	}
}

// Build connects to the database (and Redis when enabled) and wires every
// feature. sink may be nil when file logging is disabled.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger, sink *logger.FileSink) (*Container, error) {
	db, err := platformdb.OpenDB(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if cfg.Database.RunMigrations {
		if err := platformdb.Migrate(db, Models()...); err != nil {
			return nil, err
		}
	}

	c := &Container{Cfg: cfg, Logger: log, Sink: sink, DB: db}

	if cfg.Redis.Enabled {
		rdb, err := platformredis.NewRedisClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn("Redis unavailable. Running without cache, shared queue and locks.", zap.Error(err))
		} else {
			c.Redis = rdb
		}
	}

	if c.Redis != nil {
		c.Queue = queue.NewRedisQueue(c.Redis, cfg.Worker.QueueKey)
	} else {
		c.Queue = queue.NewLocalQueue(1000)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		c.Kafka = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID, log.Named("kafka"))
		log.Info("Initialized Kafka producer", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	now := func() time.Time { return time.Now().UTC() }

	// Repository
	users := authadapters.NewUserGorm(db)
	c.Users = users
	profileRepo := profileadapters.NewProfileRepository(db)
	priceLogRepo := pricelogadapters.NewPriceLogRepository(db)
	preferenceRepo := preferenceadapters.NewPreferenceRepository(db)
	scheduleRepo := scheduleadapters.NewScheduleRepository(db)
	errorLogRepo := errorlogadapters.NewErrorLogRepository(db)
	comparisonRepo := comparisonadapters.NewComparisonRepository(db)
	activityRepo := activityadapters.NewActivityRepository(db)
	var rateRepo exchangerateusecase.ExchangeRateRepository = exchangerateadapters.NewExchangeRateRepository(db)
	if c.Redis != nil {
		// Redisキャッシュでラップ
		rateRepo = cache.NewCachingRateRepository(c.Redis, 5*time.Minute, rateRepo, "rates")
	}

	// Usecase
	c.Mailer = mailer.NewDispatcher(c.Queue)
	profileUC := profileusecase.NewProfileUsecase(profileRepo)
	priceLogUC := pricelogusecase.NewPriceLogUsecase(priceLogRepo, now)
	preferenceUC := preferenceusecase.NewPreferenceUsecase(preferenceRepo)
	scheduleUC := scheduleusecase.NewScheduleUsecase(scheduleRepo, now)
	errorLogUC := errorlogusecase.NewErrorLogUsecase(errorLogRepo, now)
	rateUC := exchangerateusecase.NewExchangeRateUsecase(rateRepo, now)
	comparisonUC := comparisonusecase.NewComparisonUsecase(comparisonRepo, now)
	activityUC := activityusecase.NewActivityUsecase(activityRepo, now)
	c.ErrorLogs = errorLogUC

	// ユーザー作成直後にプロフィールを作成し、ウェルカムメールを積む
	ensureProfile := func(ctx context.Context, u *authentity.User) error {
		_, err := profileUC.EnsureForUser(ctx, u.ID)
		return err
	}
	sessions := NewSessionRepository(c.Redis, db)
	c.Sessions = authusecase.NewSessionPruner(sessions, log.Named("sessions"))
	authUC := authusecase.NewAuthUsecase(
		users,
		sessions,
		jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.AccessTTL),
		jwtmw.NewResetTokens(cfg.JWT.Secret, cfg.JWT.PasswordResetTTL),
		c.Mailer,
		cfg.JWT.RefreshTTL,
		log.Named("auth"),
		ensureProfile,
		c.Mailer.Welcome,
	)

	// Handler
	c.authHandler = authhandler.NewAuthHandler(authUC, log)
	c.resources = []router.Resource{
		{Path: "/profiles", Handler: profilehandler.NewProfileHandler(profileUC, log)},
		{Path: "/scrape-logs", Handler: priceloghandler.NewPriceLogHandler(priceLogUC, log)},
		{Path: "/preferences", Handler: preferencehandler.NewPreferenceHandler(preferenceUC, log)},
		{Path: "/schedule-scrapes", Handler: schedulehandler.NewScheduleHandler(scheduleUC, log)},
		{Path: "/error-logs", Handler: errorloghandler.NewErrorLogHandler(errorLogUC, log)},
		{Path: "/exchange-rates", Handler: exchangeratehandler.NewExchangeRateHandler(rateUC, log)},
		{Path: "/coin-comparisons", Handler: comparisonhandler.NewComparisonHandler(comparisonUC, log)},
		{Path: "/user-activities", Handler: activityhandler.NewActivityHandler(activityUC, log)},
	}

	c.runnerDeps = scheduleusecase.RunnerDeps{
		Schedules: scheduleRepo,
		Prices:    priceLogUC,
		Policy:    preferenceUC,
		Activity:  activityUC,
		Errors:    errorLogUC,
	}

	return c, nil
}

// Router builds the HTTP router with every feature handler.
func (c *Container) Router() *gin.Engine {
	checks := []platformhandler.Check{{
		Name: "database",
		Ping: func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if c.Redis != nil {
		checks = append(checks, platformhandler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() },
		})
	}

	return router.NewRouter(router.Deps{
		Logger:      c.Logger,
		JWTSecret:   c.Cfg.JWT.Secret,
		CORSOrigins: c.Cfg.Server.CORSOrigins,
		Health:      platformhandler.NewHealthHandler(c.Logger, checks...),
		Auth:        c.authHandler,
		Resources:   c.resources,
	})
}

// Runner builds the scheduled scrape runner. Alerts go to email and, when
// configured, to Kafka.
func (c *Container) Runner() *scheduleusecase.Runner {
	alerts := []scheduleusecase.AlertSink{c.Mailer}
	if c.Kafka != nil {
		alerts = append(alerts, kafka.NewAlertPublisher(c.Kafka, c.Cfg.Kafka.AlertTopic))
	}
	deps := c.runnerDeps
	deps.Fetcher = NewPriceFetcher(c.Cfg.Market, c.Cfg.App.Name, c.Logger)
	deps.RateLimiter = NewMarketRateLimiter(c.Cfg.Market, c.Logger)
	deps.Alerts = alerts
	deps.Logger = c.Logger.Named("runner")
	return scheduleusecase.NewRunner(deps)
}

// Worker builds the task worker with the email handlers registered.
func (c *Container) Worker() (*queue.Worker, error) {
	sender, err := mail.NewSender(c.Cfg.Mail, c.Logger.Named("mail"))
	if err != nil {
		return nil, err
	}
	w := queue.NewWorker(queue.WorkerDeps{
		Source:      c.Queue,
		Concurrency: c.Cfg.Worker.Concurrency,
		PollTimeout: c.Cfg.Worker.PollTimeout,
		Retry: queue.RetryPolicy{
			MaxAttempts: c.Cfg.Worker.MaxAttempts,
			Initial:     c.Cfg.Worker.RetryInitial,
			Max:         c.Cfg.Worker.RetryMax,
		},
		OnExhausted: mailer.RecordExhausted(c.ErrorLogs, c.Logger),
		Logger:      c.Logger.Named("worker"),
	})
	mailer.NewHandlers(sender, c.Users, c.Cfg.App.Name, c.Cfg.App.BaseURL, c.Logger.Named("mailer")).Register(w)
	return w, nil
}

// UsesLocalQueue reports whether tasks stay inside this process. Without
// Redis no other process can consume them.
func (c *Container) UsesLocalQueue() bool {
	_, ok := c.Queue.(*queue.LocalQueue)
	return ok
}

// StartLocalWorker runs the task worker in a goroutine when the queue is
// in-process, so the server delivers its own emails. The returned func
// blocks until the worker has stopped after ctx is cancelled.
func (c *Container) StartLocalWorker(ctx context.Context) (func(), error) {
	if !c.UsesLocalQueue() {
		return func() {}, nil
	}
	w, err := c.Worker()
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	c.Logger.Info("Running task worker in-process", zap.Int("concurrency", c.Cfg.Worker.Concurrency))
	return func() { <-done }, nil
}

// RunRetention runs one retention tick: the log cleanup when cleaner is not
// nil, then session pruning. Each step runs even if the other fails.
func (c *Container) RunRetention(ctx context.Context, cleaner *logcleanup.Cleaner) {
	if cleaner != nil {
		sum, err := cleaner.Run(ctx)
		if err != nil {
			c.Logger.Error("log cleanup failed", zap.Error(err))
		} else {
			c.Logger.Info(sum.String())
		}
	}
	if _, err := c.Sessions.Prune(ctx); err != nil {
		c.Logger.Error("session pruning failed", zap.Error(err))
	}
}

// Cleaner builds the log retention job for the configured log file.
func (c *Container) Cleaner() (*logcleanup.Cleaner, error) {
	if c.Cfg.Logging.File == "" {
		return nil, fmt.Errorf("logging.file is not configured")
	}
	deps := logcleanup.CleanerDeps{
		Path:   c.Cfg.Logging.File,
		Window: c.Cfg.Retention.Window,
		Logger: c.Logger.Named("logcleanup"),
	}
	if c.Sink != nil {
		deps.FileLock = c.Sink
	}
	if c.Redis != nil {
		deps.DistLock = lock.NewRedisLock(c.Redis, "coin:lock")
	}
	archive, err := storage.NewStorage(c.Cfg.Retention)
	if err != nil {
		return nil, err
	}
	if archive != nil {
		deps.Archive = archive
	}
	return logcleanup.NewCleaner(deps), nil
}

// Close releases the connections opened by Build.
func (c *Container) Close() {
	if c.Kafka != nil {
		_ = c.Kafka.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Error("Failed to close Redis client", zap.Error(err))
		}
	}
	if sqlDB, err := c.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
