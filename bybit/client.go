package bybit

import (
	"time"

	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/option"
	"github.com/rs/zerolog"
)

const (
	bybitName       = "bybit"
	bybitBaseURL    = "https://api.bybit.com"
	bybitSandboxURL = "https://api-demo.bybit.com"

	defaultRecvWindow = 5000
)

// Client Bybit 客户端，现货与合约使用统一的 v5 接口
type Client struct {
	// HTTPClient HTTP 客户端
	HTTPClient *common.HTTPClient

	APIKey    string
	SecretKey string

	// Sandbox 是否为模拟盘
	Sandbox    bool
	RecvWindow int
}

// NewClient 创建 Bybit 客户端
func NewClient(opts *option.ExchangeOptions, logger zerolog.Logger) *Client {
	baseURL := bybitBaseURL
	if opts.Sandbox {
		baseURL = bybitSandboxURL
	}
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}

	recvWindow := defaultRecvWindow
	if v, ok := opts.Options["recvWindow"].(int); ok && v > 0 {
		recvWindow = v
	}

	client := &Client{
		HTTPClient: common.NewHTTPClient(bybitName, baseURL),
		APIKey:     opts.APIKey,
		SecretKey:  opts.SecretKey,
		Sandbox:    opts.Sandbox,
		RecvWindow: recvWindow,
	}

	c := client.HTTPClient
	c.SetProxy(opts.Proxy)
	c.SetTimeout(opts.Timeout)
	c.SetDebug(opts.Debug)
	c.SetLogger(logger)
	c.SetErrorHandler(parseError)
	if opts.EnableRateLimit {
		// 交易接口按 UID 限制为 10 次/秒
		c.SetRateLimiter(common.NewRateLimit(time.Second, 10))
	}
	return client
}
