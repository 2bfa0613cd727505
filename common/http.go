package common

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lemconn/ccxt/errs"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrorHandler 解析交易所响应中的错误
//
// 每个响应（包括 2xx）都会调用，返回 nil 表示响应正常。
// 交易所经常在 HTTP 200 中返回业务错误码，因此不能只看状态码。
type ErrorHandler func(status int, body []byte) error

// HTTPClient 交易所 REST 客户端
//
// 公共请求头在初始化时设置，签名相关的请求头随每次请求传入，
// 同一个 HTTPClient 可以被多个 goroutine 并发使用。
type HTTPClient struct {
	client       *resty.Client
	name         string
	limiter      *rate.Limiter
	errorHandler ErrorHandler
	logger       zerolog.Logger
	debug        bool
}

// NewHTTPClient 创建 HTTP 客户端
func NewHTTPClient(name, baseURL string) *HTTPClient {
	return &HTTPClient{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "ccxt-go"),
		name:   name,
		logger: zerolog.Nop(),
	}
}

// BaseURL 返回基础地址
func (c *HTTPClient) BaseURL() string {
	return c.client.BaseURL
}

// SetProxy 设置代理，空字符串表示移除代理
func (c *HTTPClient) SetProxy(proxyURL string) {
	if proxyURL == "" {
		c.client.RemoveProxy()
		return
	}
	c.client.SetProxy(proxyURL)
}

// SetTimeout 设置超时时间
func (c *HTTPClient) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.client.SetTimeout(timeout)
	}
}

// SetHeader 设置公共请求头，只应在初始化阶段调用
func (c *HTTPClient) SetHeader(key, value string) {
	c.client.SetHeader(key, value)
}

// SetDebug 设置是否输出请求调试日志
func (c *HTTPClient) SetDebug(debug bool) {
	c.debug = debug
}

// SetLogger 设置日志实例
func (c *HTTPClient) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

// SetRateLimiter 设置限频器，nil 表示不限频
func (c *HTTPClient) SetRateLimiter(limiter *rate.Limiter) {
	c.limiter = limiter
}

// SetErrorHandler 设置错误解析函数
func (c *HTTPClient) SetErrorHandler(handler ErrorHandler) {
	c.errorHandler = handler
}

// Get 发送 GET 请求，path 需包含已编码的 query
func (c *HTTPClient) Get(ctx context.Context, path string, headers map[string]string) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, path, nil, headers)
}

// Post 发送 POST 请求
func (c *HTTPClient) Post(ctx context.Context, path string, body []byte, headers map[string]string) ([]byte, error) {
	return c.Do(ctx, http.MethodPost, path, body, headers)
}

// Delete 发送 DELETE 请求
func (c *HTTPClient) Delete(ctx context.Context, path string, body []byte, headers map[string]string) ([]byte, error) {
	return c.Do(ctx, http.MethodDelete, path, body, headers)
}

// Do 发送请求并返回响应体
//
// path 中的 query 原样发送，不会被重新排序或编码，保证与签名串一致。
func (c *HTTPClient) Do(ctx context.Context, method, path string, body []byte, headers map[string]string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	req := c.client.R().SetContext(ctx).SetHeaders(headers)
	if len(body) > 0 {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	if c.debug {
		c.logger.Debug().
			Str("method", method).
			Str("url", c.client.BaseURL+path).
			Interface("headers", RedactHeaders(headers)).
			Bytes("body", body).
			Msg("http request")
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: send request: %v", errs.ErrExchangeNotAvailable, err)
	}

	respBody := resp.Body()
	if c.debug {
		c.logger.Debug().
			Int("status", resp.StatusCode()).
			Dur("elapsed", time.Since(start)).
			Bytes("body", respBody).
			Msg("http response")
	}

	if c.errorHandler != nil {
		if err := c.errorHandler(resp.StatusCode(), respBody); err != nil {
			return nil, err
		}
	}
	if resp.IsError() || resp.StatusCode() >= 300 {
		return nil, errs.New(c.name, resp.StatusCode(), "", truncateBody(respBody), nil)
	}
	return respBody, nil
}

var sensitiveHeaders = []string{"key", "sign", "passphrase", "secret"}

// RedactHeaders 隐藏凭证相关的请求头
func RedactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		lk := strings.ToLower(k)
		for _, s := range sensitiveHeaders {
			if strings.Contains(lk, s) {
				v = "***"
				break
			}
		}
		out[k] = v
	}
	return out
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
