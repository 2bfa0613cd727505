package okx

import (
	"time"

	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/option"
	"github.com/rs/zerolog"
)

const (
	okxName    = "okx"
	okxBaseURL = "https://www.okx.com" // 模拟盘使用同一域名，通过 x-simulated-trading 区分
)

// Client OKX 客户端
type Client struct {
	// HTTPClient HTTP 客户端
	HTTPClient *common.HTTPClient

	APIKey     string
	SecretKey  string
	Passphrase string

	// Sandbox 是否为模拟盘
	Sandbox bool
}

// NewClient 创建 OKX 客户端
func NewClient(opts *option.ExchangeOptions, logger zerolog.Logger) *Client {
	baseURL := okxBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}

	client := &Client{
		HTTPClient: common.NewHTTPClient(okxName, baseURL),
		APIKey:     opts.APIKey,
		SecretKey:  opts.SecretKey,
		Passphrase: opts.Password,
		Sandbox:    opts.Sandbox,
	}

	c := client.HTTPClient
	c.SetProxy(opts.Proxy)
	c.SetTimeout(opts.Timeout)
	c.SetDebug(opts.Debug)
	c.SetLogger(logger)
	c.SetErrorHandler(parseError)
	if opts.Sandbox {
		c.SetHeader("x-simulated-trading", "1")
	}
	if opts.EnableRateLimit {
		// 大部分接口限制为 20 次/2 秒
		c.SetRateLimiter(common.NewRateLimit(time.Second, 10))
	}
	return client
}
