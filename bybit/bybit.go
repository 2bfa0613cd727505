package bybit

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

// Bybit Bybit 交易所实现
type Bybit struct {
	client *Client
	signer *Signer
	spot   *BybitSpot
	perp   *BybitPerp
	hedged bool
	logger zerolog.Logger
}

// NewBybit 创建 Bybit 交易所实例
func NewBybit(opts *option.ExchangeOptions) (exchange.Exchange, error) {
	return New(opts), nil
}

// New 创建 Bybit 实例
func New(opts *option.ExchangeOptions) *Bybit {
	if opts == nil {
		opts = option.DefaultExchangeOptions()
	}
	logger := common.NewLogger(bybitName, opts.Debug, opts.Logger)

	b := &Bybit{
		client: NewClient(opts, logger),
		signer: NewSigner(opts.APIKey, opts.SecretKey),
		hedged: opts.Hedged,
		logger: logger,
	}
	b.spot = NewBybitSpot(b)
	b.perp = NewBybitPerp(b)
	return b
}

// Spot 返回现货交易接口
func (b *Bybit) Spot() exchange.SpotExchange {
	return b.spot
}

// Perp 返回永续合约交易接口
func (b *Bybit) Perp() exchange.PerpExchange {
	return b.perp
}

// Name 返回交易所名称
func (b *Bybit) Name() string {
	return bybitName
}

func (b *Bybit) publicRequest(ctx context.Context, path string, req *types.ExValues) ([]byte, error) {
	return b.client.HTTPClient.Get(ctx, req.JoinPath(path), nil)
}

// requireCredentials 私有接口在发起任何请求前校验凭证
func (b *Bybit) requireCredentials() error {
	if b.client.APIKey == "" || b.client.SecretKey == "" {
		return errs.ErrAuthenticationRequired
	}
	return nil
}

// signAndRequest 签名并发送请求
func (b *Bybit) signAndRequest(ctx context.Context, method, path string, req *types.ExValues) ([]byte, error) {
	if err := b.requireCredentials(); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c := b.client

	var (
		payload string
		body    []byte
	)
	switch method {
	case http.MethodGet:
		payload = req.EncodeQuery()
		path = req.JoinPath(path)
	case http.MethodPost:
		var err error
		if body, err = req.EncodeBodyJSON(); err != nil {
			return nil, err
		}
		if body == nil {
			body = []byte("{}")
		}
		payload = string(body)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	timestamp := common.GetTimestamp()
	req.SetHeader("X-BAPI-API-KEY", c.APIKey)
	req.SetHeader("X-BAPI-TIMESTAMP", timestamp)
	req.SetHeader("X-BAPI-RECV-WINDOW", c.RecvWindow)
	req.SetHeader("X-BAPI-SIGN", b.signer.Sign(timestamp, c.RecvWindow, payload))

	return c.HTTPClient.Do(ctx, method, path, body, req.Headers())
}

// decodeResult 解析响应包中的 result
func decodeResult[T any](resp []byte) (*T, error) {
	var r bybitResponse[T]
	if err := json.Unmarshal(resp, &r); err != nil {
		return nil, err
	}
	return &r.Result, nil
}

// decodeList 解析 result.list
func decodeList[T any](resp []byte) ([]T, error) {
	r, err := decodeResult[bybitList[T]](resp)
	if err != nil {
		return nil, err
	}
	return r.List, nil
}

func loadArgs(opts []option.ArgsOption) *option.ExchangeArgsOptions {
	return option.ApplyArgsOptions(opts...)
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
