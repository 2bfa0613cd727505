package option

import (
	"time"

	"github.com/rs/zerolog"
)

// ExchangeOptions 交易所初始化选项
type ExchangeOptions struct {
	// APIKey API 密钥
	APIKey string
	// SecretKey 密钥
	SecretKey string
	// Password API 口令（OKX passphrase）
	Password string
	// Sandbox 是否使用模拟盘
	Sandbox bool
	// Proxy 代理地址，支持 http/https/socks5
	Proxy string
	// BaseURL 覆盖 REST 基础地址（现货与合约共用，主要用于测试）
	BaseURL string
	// Debug 是否输出请求调试日志
	Debug bool
	// Timeout 单次请求超时
	Timeout time.Duration
	// Hedged 账户是否为双向持仓模式
	Hedged bool
	// EnableRateLimit 是否启用客户端限频
	EnableRateLimit bool
	// Logger 日志实例，未设置时不输出日志
	Logger *zerolog.Logger
	// Options 交易所特定选项
	Options map[string]interface{}
}

// Option 初始化选项函数
type Option func(*ExchangeOptions)

// DefaultExchangeOptions 返回默认初始化选项
func DefaultExchangeOptions() *ExchangeOptions {
	return &ExchangeOptions{
		Timeout:         30 * time.Second,
		EnableRateLimit: true,
		Options:         make(map[string]interface{}),
	}
}

// Apply 依次应用选项
func (o *ExchangeOptions) Apply(opts ...Option) *ExchangeOptions {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewExchangeOptions 基于默认值应用选项
func NewExchangeOptions(opts ...Option) *ExchangeOptions {
	return DefaultExchangeOptions().Apply(opts...)
}

// WithAPIKey 设置 API 密钥
func WithAPIKey(apiKey string) Option {
	return func(opts *ExchangeOptions) {
		opts.APIKey = apiKey
	}
}

// WithSecretKey 设置密钥
func WithSecretKey(secretKey string) Option {
	return func(opts *ExchangeOptions) {
		opts.SecretKey = secretKey
	}
}

// WithPassword 设置 API 口令
func WithPassword(password string) Option {
	return func(opts *ExchangeOptions) {
		opts.Password = password
	}
}

// WithSandbox 设置是否使用模拟盘
func WithSandbox(sandbox bool) Option {
	return func(opts *ExchangeOptions) {
		opts.Sandbox = sandbox
	}
}

// WithProxy 设置代理地址
func WithProxy(proxy string) Option {
	return func(opts *ExchangeOptions) {
		opts.Proxy = proxy
	}
}

// WithBaseURL 覆盖 REST 基础地址
func WithBaseURL(baseURL string) Option {
	return func(opts *ExchangeOptions) {
		opts.BaseURL = baseURL
	}
}

// WithDebug 设置是否输出调试日志
func WithDebug(debug bool) Option {
	return func(opts *ExchangeOptions) {
		opts.Debug = debug
	}
}

// WithTimeout 设置请求超时
func WithTimeout(timeout time.Duration) Option {
	return func(opts *ExchangeOptions) {
		opts.Timeout = timeout
	}
}

// WithHedged 设置账户是否为双向持仓模式
func WithHedged(hedged bool) Option {
	return func(opts *ExchangeOptions) {
		opts.Hedged = hedged
	}
}

// WithEnableRateLimit 设置是否启用客户端限频
func WithEnableRateLimit(enable bool) Option {
	return func(opts *ExchangeOptions) {
		opts.EnableRateLimit = enable
	}
}

// WithLogger 设置日志实例
func WithLogger(logger zerolog.Logger) Option {
	return func(opts *ExchangeOptions) {
		opts.Logger = &logger
	}
}

// WithOption 设置交易所特定选项
func WithOption(key string, value interface{}) Option {
	return func(opts *ExchangeOptions) {
		if opts.Options == nil {
			opts.Options = make(map[string]interface{})
		}
		opts.Options[key] = value
	}
}
