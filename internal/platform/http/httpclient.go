// Package http provides the outbound HTTP client and the shared HTTP handlers.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は相場APIなど外部サービス呼び出し用のHTTPクライアントを作成します。
//
//   - timeout はリクエスト全体の上限です（config の market.timeout）。
//   - userAgent は User-Agent ヘッダーが未設定のリクエストに付与されます。
//     空の場合は Go のデフォルトのままです。
//
// 呼び出し先は少数のホストに限られるため、ホストごとのアイドル接続を多めに保持します。
func NewHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	var rt http.RoundTripper = t
	if userAgent != "" {
		rt = &userAgentTransport{base: t, userAgent: userAgent}
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

// userAgentTransport は User-Agent を付与してから base に委譲します。
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	// RoundTripper は受け取ったリクエストを変更してはならない
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}
