// Package di wires the application's components from configuration.
package di

import (
	"time"

	"go.uber.org/zap"

	"coin_backend/internal/platform/config"
	"coin_backend/internal/platform/externalapi/coingecko"
	platformhttp "coin_backend/internal/platform/http"
	"coin_backend/internal/shared/ratelimiter"
)

// NewPriceFetcher creates a CoinGecko client with a dedicated HTTP client
// that identifies itself as appName.
func NewPriceFetcher(cfg config.MarketConfig, appName string, logger *zap.Logger) *coingecko.Client {
	httpClient := platformhttp.NewHTTPClient(cfg.Timeout, appName)
	return coingecko.NewClient(cfg, httpClient, logger.Named("coingecko"))
}

// NewMarketRateLimiter limits outbound market calls to cfg.RequestsPerMinute.
func NewMarketRateLimiter(cfg config.MarketConfig, logger *zap.Logger) *ratelimiter.RateLimiter {
	return ratelimiter.NewRateLimiter(cfg.RequestsPerMinute, time.Minute, logger.Named("ratelimiter"))
}
