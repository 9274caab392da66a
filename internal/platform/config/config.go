// Package config loads the service configuration from defaults, an optional
// YAML file, a .env file and COIN_* environment variables (in that order of
// increasing precedence).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. COIN_SERVER_PORT.
const EnvPrefix = "COIN"

// Config holds all configuration for the binaries in cmd/.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Market    MarketConfig    `mapstructure:"market"`
	Mail      MailConfig      `mapstructure:"mail"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Retention RetentionConfig `mapstructure:"retention"`
}

// AppConfig holds values used when building links for users.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"baseURL"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
	CORSOrigins  []string      `mapstructure:"corsOrigins"`
}

// DatabaseConfig selects the gorm driver and its connection parameters.
type DatabaseConfig struct {
	Driver        string        `mapstructure:"driver"` // mysql, postgres or sqlite
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	Name          string        `mapstructure:"name"`
	Host          string        `mapstructure:"host"`
	Port          string        `mapstructure:"port"`
	InstanceName  string        `mapstructure:"instanceName"`
	Path          string        `mapstructure:"path"` // sqlite file
	ConnectWait   time.Duration `mapstructure:"connectWait"`
	RunMigrations bool          `mapstructure:"runMigrations"`
}

// RedisConfig enables the cache, the task queue and distributed locks.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret           string        `mapstructure:"secret"`
	AccessTTL        time.Duration `mapstructure:"accessTTL"`
	RefreshTTL       time.Duration `mapstructure:"refreshTTL"`
	PasswordResetTTL time.Duration `mapstructure:"passwordResetTTL"`
}

// LoggingConfig holds zap settings. File is the system log swept by the
// retention job; leave it empty to log to stdout only.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MarketConfig configures the coin price API client.
type MarketConfig struct {
	BaseURL           string        `mapstructure:"baseURL"`
	APIKey            string        `mapstructure:"apiKey"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requestsPerMinute"`
}

// MailConfig configures outgoing SMTP. An empty Host logs messages instead of sending.
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// KafkaConfig enables publishing price alerts. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string `mapstructure:"brokers"`
	ClientID   string   `mapstructure:"clientID"`
	AlertTopic string   `mapstructure:"alertTopic"`
}

// WorkerConfig holds background worker settings.
type WorkerConfig struct {
	QueueKey       string        `mapstructure:"queueKey"`
	Concurrency    int           `mapstructure:"concurrency"`
	PollTimeout    time.Duration `mapstructure:"pollTimeout"`
	ScrapeInterval time.Duration `mapstructure:"scrapeInterval"`
	MaxAttempts    int           `mapstructure:"maxAttempts"`
	RetryInitial   time.Duration `mapstructure:"retryInitial"`
	RetryMax       time.Duration `mapstructure:"retryMax"`
}

// RetentionConfig configures the log cleanup job.
type RetentionConfig struct {
	Window        time.Duration `mapstructure:"window"`
	Interval      time.Duration `mapstructure:"interval"`
	ArchiveDir    string        `mapstructure:"archiveDir"`
	ArchiveBucket string        `mapstructure:"archiveBucket"`
	ArchivePrefix string        `mapstructure:"archivePrefix"`
	ArchiveRegion string        `mapstructure:"archiveRegion"`
}

// Load reads .env (if present), the YAML file at path (skipped when it does
// not exist) and the environment, and returns the merged configuration.
func Load(path string) (*Config, error) {
	// .env is optional; the process environment is used when it is absent
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Retention.Window <= 0 {
		return errors.New("retention.window must be positive")
	}
	if c.Retention.Interval <= 0 {
		return errors.New("retention.interval must be positive")
	}
	if c.Worker.ScrapeInterval <= 0 {
		return errors.New("worker.scrapeInterval must be positive")
	}
	if c.Worker.MaxAttempts < 1 {
		return errors.New("worker.maxAttempts must be at least 1")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Coinlytics")
	v.SetDefault("app.baseURL", "http://localhost:8080")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")
	v.SetDefault("server.corsOrigins", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "coin")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.instanceName", "")
	v.SetDefault("database.path", "./coin.db")
	v.SetDefault("database.connectWait", "60s")
	v.SetDefault("database.runMigrations", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.accessTTL", "1h")
	v.SetDefault("jwt.refreshTTL", "168h")
	v.SetDefault("jwt.passwordResetTTL", "30m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "coinlytics_system.log")

	v.SetDefault("market.baseURL", "https://api.coingecko.com/api/v3")
	v.SetDefault("market.apiKey", "")
	v.SetDefault("market.timeout", "10s")
	v.SetDefault("market.requestsPerMinute", 30)

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "no-reply@coinlytics.local")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.clientID", "coin-backend")
	v.SetDefault("kafka.alertTopic", "price-alerts")

	v.SetDefault("worker.queueKey", "coin:queue:tasks")
	v.SetDefault("worker.concurrency", 2)
	v.SetDefault("worker.pollTimeout", "5s")
	v.SetDefault("worker.scrapeInterval", "1m")
	v.SetDefault("worker.maxAttempts", 3)
	v.SetDefault("worker.retryInitial", "1s")
	v.SetDefault("worker.retryMax", "30s")

	v.SetDefault("retention.window", "120h")
	v.SetDefault("retention.interval", "24h")
	v.SetDefault("retention.archiveDir", "")
	v.SetDefault("retention.archiveBucket", "")
	v.SetDefault("retention.archivePrefix", "logs/")
	v.SetDefault("retention.archiveRegion", "us-east-1")
}
