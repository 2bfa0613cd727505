package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/lemconn/ccxt/common"
	"github.com/lemconn/ccxt/errs"
	"github.com/lemconn/ccxt/exchange"
	"github.com/lemconn/ccxt/option"
	"github.com/lemconn/ccxt/types"
	"github.com/rs/zerolog"
)

// OKX OKX 交易所实现
type OKX struct {
	client *Client
	signer *Signer
	spot   *OKXSpot
	perp   *OKXPerp
	hedged bool
	logger zerolog.Logger

	// marginModes SetMarginType 设置的各合约默认 tdMode
	marginModes sync.Map
}

// NewOKX 创建 OKX 交易所实例
func NewOKX(opts *option.ExchangeOptions) (exchange.Exchange, error) {
	return New(opts), nil
}

// New 创建 OKX 实例
func New(opts *option.ExchangeOptions) *OKX {
	if opts == nil {
		opts = option.DefaultExchangeOptions()
	}
	logger := common.NewLogger(okxName, opts.Debug, opts.Logger)

	o := &OKX{
		client: NewClient(opts, logger),
		signer: NewSigner(opts.SecretKey),
		hedged: opts.Hedged,
		logger: logger,
	}
	o.spot = NewOKXSpot(o)
	o.perp = NewOKXPerp(o)
	return o
}

// Spot 返回现货交易接口
func (o *OKX) Spot() exchange.SpotExchange {
	return o.spot
}

// Perp 返回永续合约交易接口
func (o *OKX) Perp() exchange.PerpExchange {
	return o.perp
}

// Name 返回交易所名称
func (o *OKX) Name() string {
	return okxName
}

func (o *OKX) publicRequest(ctx context.Context, path string, req *types.ExValues) ([]byte, error) {
	return o.client.HTTPClient.Get(ctx, req.JoinPath(path), nil)
}

// requireCredentials 私有接口在发起任何请求前校验凭证
func (o *OKX) requireCredentials() error {
	if o.client.APIKey == "" || o.client.SecretKey == "" || o.client.Passphrase == "" {
		return errs.ErrAuthenticationRequired
	}
	return nil
}

// signAndRequest 签名并发送请求
// GET 参数在 query 中并参与签名；POST 参数编码为 JSON 请求体
func (o *OKX) signAndRequest(ctx context.Context, method, path string, req *types.ExValues) ([]byte, error) {
	if err := o.requireCredentials(); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c := o.client

	requestPath := path
	var body []byte
	switch method {
	case http.MethodGet:
		requestPath = req.JoinPath(path)
	case http.MethodPost:
		var err error
		if body, err = req.EncodeBodyJSON(); err != nil {
			return nil, err
		}
		if body == nil {
			body = []byte("{}")
		}
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	timestamp := common.GetISO8601Timestamp()
	req.SetHeader("OK-ACCESS-KEY", c.APIKey)
	req.SetHeader("OK-ACCESS-SIGN", o.signer.Sign(timestamp, method, requestPath, string(body)))
	req.SetHeader("OK-ACCESS-TIMESTAMP", timestamp)
	req.SetHeader("OK-ACCESS-PASSPHRASE", c.Passphrase)

	return c.HTTPClient.Do(ctx, method, requestPath, body, req.Headers())
}

// decodeData 解析响应包中的 data 数组
func decodeData[T any](resp []byte) ([]T, error) {
	var r okxResponse[T]
	if err := json.Unmarshal(resp, &r); err != nil {
		return nil, err
	}
	return r.Data, nil
}

// decodeFirst 解析 data 中的第一条记录
func decodeFirst[T any](resp []byte) (*T, error) {
	data, err := decodeData[T](resp)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", errs.ErrExchange)
	}
	return &data[0], nil
}

func loadArgs(opts []option.ArgsOption) *option.ExchangeArgsOptions {
	return option.ApplyArgsOptions(opts...)
}

// tdMode 合约交易模式：调用参数优先，其次是 SetMarginType 的设置，默认全仓
func (o *OKX) tdMode(instID string, args *option.ExchangeArgsOptions) string {
	if args != nil && args.MarginType != nil {
		return marginMode(*args.MarginType)
	}
	if v, ok := o.marginModes.Load(instID); ok {
		return v.(string)
	}
	return "cross"
}

func marginMode(m option.MarginType) string {
	if m.IsIsolated() {
		return "isolated"
	}
	return "cross"
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
