// Package coingecko provides a client for the CoinGecko price API.
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"coin_backend/internal/feature/schedule/usecase"
	"coin_backend/internal/platform/config"
)

// ErrPriceUnavailable is returned when the API has no quote for the pair.
var ErrPriceUnavailable = errors.New("coingecko: price unavailable")

// apiKeyHeader は Demo プランのAPIキーを渡すヘッダーです。
const apiKeyHeader = "x-cg-demo-api-key"

// Client はCoinGecko APIから現在価格を取得するPriceFetcher実装です。
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// ClientがPriceFetcherを実装していることをコンパイル時に検証します。
var _ usecase.PriceFetcher = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg config.MarketConfig, client *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
		logger:  logger,
	}
}

// errorResponse はAPIがエラー時に返すボディです。
type errorResponse struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Error string `json:"error"`
}

func (e errorResponse) message() string {
	if e.Status.ErrorMessage != "" {
		return e.Status.ErrorMessage
	}
	return e.Error
}

// SpotPrice はコインシンボル（例: BTC）の現在価格を通貨（例: USD）で返します。
func (c *Client) SpotPrice(ctx context.Context, coin, currency string) (decimal.Decimal, error) {
	sym := strings.ToLower(coin)
	cur := strings.ToLower(currency)

	q := url.Values{}
	q.Set("symbols", sym)
	q.Set("vs_currencies", cur)
	u := fmt.Sprintf("%s/simple/price?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if res.StatusCode >= 400 {
		var body errorResponse
		if json.NewDecoder(res.Body).Decode(&body) == nil && body.message() != "" {
			return decimal.Zero, fmt.Errorf("coingecko http %d: %s", res.StatusCode, body.message())
		}
		return decimal.Zero, fmt.Errorf("coingecko http %d", res.StatusCode)
	}

	// {"btc": {"usd": 67187.33}}
	var body map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decode coingecko response: %w", err)
	}
	price, ok := body[sym][cur]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s/%s", ErrPriceUnavailable, coin, currency)
	}
	return price, nil
}
