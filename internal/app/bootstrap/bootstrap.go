// Package bootstrap loads configuration and the logger for the binaries in cmd/.
package bootstrap

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"coin_backend/internal/platform/config"
	"coin_backend/internal/platform/logger"
)

// Env is what every binary needs before wiring features.
type Env struct {
	Cfg     *config.Config
	Logger  *zap.Logger
	Sink    *logger.FileSink
	Cleanup func()
}

// Load parses the -config flag (default $COIN_CONFIG or config.yaml), loads
// the configuration and builds the logger.
func Load(name string) (*Env, error) {
	def := os.Getenv("COIN_CONFIG")
	if def == "" {
		def = "config.yaml"
	}
	path := flag.String("config", def, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		return nil, err
	}
	log, sink, cleanup, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log = log.Named(name)
	if cfg.JWT.Secret == "" {
		log.Warn("jwt.secret is not set. Set a strong secret in production.")
	}
	return &Env{Cfg: cfg, Logger: log, Sink: sink, Cleanup: cleanup}, nil
}
