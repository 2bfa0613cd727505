package gate

import (
	"context"
	"encoding/json"
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

// Gate Gate.io 交易所实现
type Gate struct {
	client *Client
	signer *Signer
	spot   *GateSpot
	perp   *GatePerp
	hedged bool
	logger zerolog.Logger
}

// NewGate 创建 Gate 交易所实例
func NewGate(opts *option.ExchangeOptions) (exchange.Exchange, error) {
	return New(opts), nil
}

// New 创建 Gate 实例
func New(opts *option.ExchangeOptions) *Gate {
	if opts == nil {
		opts = option.DefaultExchangeOptions()
	}
	logger := common.NewLogger(gateName, opts.Debug, opts.Logger)

	g := &Gate{
		client: NewClient(opts, logger),
		signer: NewSigner(opts.SecretKey),
		hedged: opts.Hedged,
		logger: logger,
	}
	g.spot = NewGateSpot(g)
	g.perp = NewGatePerp(g)
	return g
}

// Spot 返回现货交易接口
func (g *Gate) Spot() exchange.SpotExchange {
	return g.spot
}

// Perp 返回永续合约交易接口
func (g *Gate) Perp() exchange.PerpExchange {
	return g.perp
}

// Name 返回交易所名称
func (g *Gate) Name() string {
	return gateName
}

func (g *Gate) publicRequest(ctx context.Context, path string, req *types.ExValues) ([]byte, error) {
	return g.client.HTTPClient.Get(ctx, req.JoinPath(path), nil)
}

// requireCredentials 私有接口在发起任何请求前校验凭证
func (g *Gate) requireCredentials() error {
	if g.client.APIKey == "" || g.client.SecretKey == "" {
		return errs.ErrAuthenticationRequired
	}
	return nil
}

// signAndRequest 签名并发送请求，query 与请求体可同时存在
func (g *Gate) signAndRequest(ctx context.Context, method, path string, req *types.ExValues) ([]byte, error) {
	if err := g.requireCredentials(); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c := g.client

	var body []byte
	switch method {
	case http.MethodGet, http.MethodDelete:
	case http.MethodPost:
		var err error
		if body, err = req.EncodeBodyJSON(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	timestamp := common.GetTimestampSeconds()
	req.SetHeader("KEY", c.APIKey)
	req.SetHeader("Timestamp", timestamp)
	req.SetHeader("SIGN", g.signer.Sign(method, path, req.EncodeQuery(), body, timestamp))

	return c.HTTPClient.Do(ctx, method, req.JoinPath(path), body, req.Headers())
}

func decode[T any](resp []byte) (T, error) {
	var v T
	err := json.Unmarshal(resp, &v)
	return v, err
}

func loadArgs(opts []option.ArgsOption) *option.ExchangeArgsOptions {
	return option.ApplyArgsOptions(opts...)
}

// clientOrderID Gate 要求自定义订单ID以 t- 开头
func clientOrderID(args *option.ExchangeArgsOptions) string {
	if id, ok := option.GetString(args.ClientOrderID); ok {
		return id
	}
	return "t-ccxt-" + common.UUID16()
}

// orderPathID 订单接口路径中的ID，未提供 orderID 时使用自定义ID
func orderPathID(orderID string, args *option.ExchangeArgsOptions) (string, error) {
	if orderID != "" {
		return orderID, nil
	}
	if id, ok := option.GetString(args.ClientOrderID); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: either orderId or ClientOrderID option must be provided", errs.ErrBadRequest)
}

// applyParams 透传原始参数到请求体
func applyParams(req *types.ExValues, args *option.ExchangeArgsOptions) {
	keys := make([]string, 0, len(args.Params))
	for k := range args.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		req.SetBody(k, args.Params[k])
	}
}

// timeInForce 限价单有效期，post only 对应 poc
func timeInForce(args *option.ExchangeArgsOptions) string {
	if postOnly, _ := option.GetBool(args.PostOnly); postOnly {
		return "poc"
	}
	if args.TimeInForce != nil {
		return args.TimeInForce.Lower()
	}
	return "gtc"
}
