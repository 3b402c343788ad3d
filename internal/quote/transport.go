package quote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/model"
)

// Fetcher 获取原始行情文本。连接池、超时与重试都属于传输层，核心不管。
type Fetcher interface {
	FetchText(ctx context.Context, url string, headers map[string]string) (string, error)
}

// Headers builds the fixed browser-identifying header set the quote endpoints
// expect, with optional referer/cookie overrides.
func Headers(referer, cookie string) map[string]string {
	h := map[string]string{
		"Accept":          "*/*",
		"Accept-Language": "en-US,en;q=0.5",
		"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_12_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/63.0.3239.84 Safari/537.36",
	}
	if referer != "" {
		h["Referer"] = referer
	}
	if cookie != "" {
		h["Cookie"] = cookie
	}
	return h
}

type HTTPFetcher struct {
	client *http.Client
	logger *zap.Logger
}

func NewHTTPFetcher(logger *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (f *HTTPFetcher) FetchText(ctx context.Context, url string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("quote fetch failed", zap.String("url", url), zap.Error(err))
		return "", fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", model.ErrUpstreamUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, err)
	}
	return string(body), nil
}
