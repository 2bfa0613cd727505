package gate

import (
	"time"

	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/option"
	"github.com/rs/zerolog"
)

const (
	gateName       = "gate"
	gateBaseURL    = "https://api.gateio.ws"
	gateSandboxURL = "https://api-testnet.gateapi.io"
)

// Client Gate 客户端，现货与合约共用 /api/v4
type Client struct {
	// HTTPClient HTTP 客户端
	HTTPClient *common.HTTPClient

	APIKey    string
	SecretKey string

	// Sandbox 是否为模拟盘
	Sandbox bool
}

// NewClient 创建 Gate 客户端
func NewClient(opts *option.ExchangeOptions, logger zerolog.Logger) *Client {
	baseURL := gateBaseURL
	if opts.Sandbox {
		baseURL = gateSandboxURL
	}
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}

	client := &Client{
		HTTPClient: common.NewHTTPClient(gateName, baseURL),
		APIKey:     opts.APIKey,
		SecretKey:  opts.SecretKey,
		Sandbox:    opts.Sandbox,
	}

	c := client.HTTPClient
	c.SetProxy(opts.Proxy)
	c.SetTimeout(opts.Timeout)
	c.SetDebug(opts.Debug)
	c.SetLogger(logger)
	c.SetHeader("X-Gate-Channel-Id", "api")
	c.SetErrorHandler(parseError)
	if opts.EnableRateLimit {
		c.SetRateLimiter(common.NewRateLimit(time.Second, 20))
	}
	return client
}
