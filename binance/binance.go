package binance

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/exchange"
	"github.com/lemconn/ccxt/option"
	"github.com/lemconn/ccxt/types"
	"github.com/rs/zerolog"
)

// Binance Binance 交易所实现
type Binance struct {
	client *Client
	signer *Signer
	spot   *BinanceSpot
	perp   *BinancePerp
	hedged bool
	logger zerolog.Logger
}

// NewBinance 创建 Binance 交易所实例
func NewBinance(opts *option.ExchangeOptions) (exchange.Exchange, error) {
	return New(opts), nil
}

// New 创建 Binance 实例，返回具体类型以便使用 WatchTicker 等扩展方法
func New(opts *option.ExchangeOptions) *Binance {
	if opts == nil {
		opts = option.DefaultExchangeOptions()
	}
	logger := common.NewLogger(binanceName, opts.Debug, opts.Logger)

	b := &Binance{
		client: NewClient(opts, logger),
		signer: NewSigner(opts.SecretKey),
		hedged: opts.Hedged,
		logger: logger,
	}
	b.spot = NewBinanceSpot(b)
	b.perp = NewBinancePerp(b)
	return b
}

// Spot 返回现货交易接口
func (b *Binance) Spot() exchange.SpotExchange {
	return b.spot
}

// Perp 返回永续合约交易接口
func (b *Binance) Perp() exchange.PerpExchange {
	return b.perp
}

// SpotImpl 返回现货具体实现
func (b *Binance) SpotImpl() *BinanceSpot {
	return b.spot
}

// PerpImpl 返回合约具体实现
func (b *Binance) PerpImpl() *BinancePerp {
	return b.perp
}

// Name 返回交易所名称
func (b *Binance) Name() string {
	return binanceName
}

// publicRequest 发送公共请求
func (b *Binance) publicRequest(ctx context.Context, client *common.HTTPClient, path string, req *types.ExValues) ([]byte, error) {
	return client.Get(ctx, req.JoinPath(path), nil)
}

// requireCredentials 私有接口在发起任何请求前校验凭证
func (b *Binance) requireCredentials() error {
	if b.client.APIKey == "" || b.client.SecretKey == "" {
		return errs.ErrAuthenticationRequired
	}
	return nil
}

// signAndRequest 统一处理签名和发送请求
// 参数全部放在 query 中：追加 timestamp、recvWindow 后对整个 query 签名
func (b *Binance) signAndRequest(ctx context.Context, client *common.HTTPClient, method, path string, req *types.ExValues) ([]byte, error) {
	if err := b.requireCredentials(); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	req.SetQuery("timestamp", common.GetTimestamp())
	req.SetQuery("recvWindow", b.client.RecvWindow)
	req.SetQuery("signature", b.signer.Sign(req.EncodeQuery()))
	req.SetHeader("X-MBX-APIKEY", b.client.APIKey)

	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return client.Do(ctx, method, req.JoinPath(path), nil, req.Headers())
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}
}

// loadArgs 解析调用参数
func loadArgs(opts []option.ArgsOption) *option.ExchangeArgsOptions {
	return option.ApplyArgsOptions(opts...)
}

// orderIdentity 设置 orderId 或 origClientOrderId
func orderIdentity(req *types.ExValues, orderID string, args *option.ExchangeArgsOptions) error {
	if orderID != "" {
		req.SetQuery("orderId", orderID)
		return nil
	}
	if clientOrderID, ok := option.GetString(args.ClientOrderID); ok {
		req.SetQuery("origClientOrderId", clientOrderID)
		return nil
	}
	return fmt.Errorf("%w: either orderId or ClientOrderID option must be provided", errs.ErrBadRequest)
}

// applyParams 透传原始参数
func applyParams(req *types.ExValues, args *option.ExchangeArgsOptions) {
	keys := make([]string, 0, len(args.Params))
	for k := range args.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		req.SetQuery(k, args.Params[k])
	}
}
