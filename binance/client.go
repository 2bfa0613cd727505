package binance

import (
	"time"

	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/option"
	"github.com/rs/zerolog"
)

const (
	binanceName           = "binance"
	binanceBaseURL        = "https://api.binance.com"
	binanceSandboxURL     = "https://demo-api.binance.com"
	binanceFapiBaseURL    = "https://fapi.binance.com"
	binanceFapiSandboxURL = "https://demo-fapi.binance.com"

	binanceWsURL            = "wss://stream.binance.com:9443/ws"
	binanceWsSandboxURL     = "wss://demo-stream.binance.com/ws"
	binanceFapiWsURL        = "wss://fstream.binance.com/ws"
	binanceFapiWsSandboxURL = "wss://fstream.binancefuture.com/ws"

	defaultRecvWindow = 5000
)

// Client Binance 客户端，现货与合约使用不同域名
type Client struct {
	// SpotClient 现货 API 客户端
	SpotClient *common.HTTPClient
	// PerpClient U 本位合约 API 客户端
	PerpClient *common.HTTPClient

	// SpotWsURL / PerpWsURL 行情推送地址
	SpotWsURL string
	PerpWsURL string

	APIKey     string
	SecretKey  string
	Sandbox    bool
	ProxyURL   string
	RecvWindow int
}

// NewClient 创建 Binance 客户端
func NewClient(opts *option.ExchangeOptions, logger zerolog.Logger) *Client {
	spotURL, perpURL := binanceBaseURL, binanceFapiBaseURL
	spotWs, perpWs := binanceWsURL, binanceFapiWsURL
	if opts.Sandbox {
		spotURL, perpURL = binanceSandboxURL, binanceFapiSandboxURL
		spotWs, perpWs = binanceWsSandboxURL, binanceFapiWsSandboxURL
	}
	if opts.BaseURL != "" {
		spotURL, perpURL = opts.BaseURL, opts.BaseURL
	}
	if v, ok := opts.Options["wsURL"].(string); ok && v != "" {
		spotWs, perpWs = v, v
	}

	recvWindow := defaultRecvWindow
	if v, ok := opts.Options["recvWindow"].(int); ok && v > 0 {
		recvWindow = v
	}

	client := &Client{
		SpotClient: common.NewHTTPClient(binanceName, spotURL),
		PerpClient: common.NewHTTPClient(binanceName, perpURL),
		SpotWsURL:  spotWs,
		PerpWsURL:  perpWs,
		APIKey:     opts.APIKey,
		SecretKey:  opts.SecretKey,
		Sandbox:    opts.Sandbox,
		ProxyURL:   opts.Proxy,
		RecvWindow: recvWindow,
	}

	for _, c := range []*common.HTTPClient{client.SpotClient, client.PerpClient} {
		c.SetProxy(opts.Proxy)
		c.SetTimeout(opts.Timeout)
		c.SetDebug(opts.Debug)
		c.SetLogger(logger)
		c.SetErrorHandler(parseError)
		if opts.EnableRateLimit {
			// 现货权重 6000/分钟，合约 2400/分钟，按 20 次/秒保守限频
			c.SetRateLimiter(common.NewRateLimit(time.Second, 20))
		}
	}
	return client
}
