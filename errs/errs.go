// Package errs 定义统一的交易所错误类型
//
// 各交易所返回的错误码都会映射到这里的哨兵错误，调用方可以用
// errors.Is 判断错误类别，而不必关心具体交易所的错误码。
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrExchangeNotSupported 不支持的交易所
	ErrExchangeNotSupported = errors.New("exchange not supported")
	// ErrNotSupported 交易所不支持该功能
	ErrNotSupported = errors.New("not supported")
	// ErrMarketNotFound 市场未找到
	ErrMarketNotFound = errors.New("market not found")
	// ErrBadSymbol 交易所不认识该交易对
	ErrBadSymbol = errors.New("bad symbol")
	// ErrBadRequest 请求参数错误
	ErrBadRequest = errors.New("bad request")
	// ErrAuthenticationRequired 缺少 API 凭证
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrAuthentication 凭证或签名无效
	ErrAuthentication = errors.New("authentication failed")
	// ErrPermissionDenied 凭证没有对应权限
	ErrPermissionDenied = errors.New("permission denied")
	// ErrRateLimitExceeded 请求频率超限
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInsufficientFunds 余额不足
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidOrder 订单参数无效
	ErrInvalidOrder = errors.New("invalid order")
	// ErrOrderNotFound 订单未找到
	ErrOrderNotFound = errors.New("order not found")
	// ErrExchangeNotAvailable 交易所暂不可用（5xx 或维护）
	ErrExchangeNotAvailable = errors.New("exchange not available")
	// ErrExchange 未分类的交易所错误
	ErrExchange = errors.New("exchange error")
)

// ExchangeError 交易所返回的错误
type ExchangeError struct {
	// Exchange 交易所名称
	Exchange string
	// HTTPStatus HTTP 状态码
	HTTPStatus int
	// Code 交易所错误码或错误标签
	Code string
	// Message 交易所错误信息
	Message string
	// Err 对应的统一错误
	Err error
}

func (e *ExchangeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code=%s, status=%d): %s", e.Exchange, e.Err, e.Code, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s (status=%d): %s", e.Exchange, e.Err, e.HTTPStatus, e.Message)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// New 创建 ExchangeError，kind 为空时按 HTTP 状态码归类
func New(exchange string, status int, code, message string, kind error) *ExchangeError {
	if kind == nil {
		kind = FromHTTPStatus(status)
	}
	return &ExchangeError{
		Exchange:   exchange,
		HTTPStatus: status,
		Code:       code,
		Message:    message,
		Err:        kind,
	}
}

// FromHTTPStatus 按 HTTP 状态码归类错误
func FromHTTPStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrAuthentication
	case status == http.StatusForbidden:
		return ErrPermissionDenied
	case status == http.StatusNotFound, status == http.StatusBadRequest:
		return ErrBadRequest
	case status == http.StatusTooManyRequests, status == http.StatusTeapot:
		return ErrRateLimitExceeded
	case status >= 500:
		return ErrExchangeNotAvailable
	}
	return ErrExchange
}

// CodeMap 交易所错误码到统一错误的映射
type CodeMap map[string]error

// Lookup 查找错误码，未命中时返回 nil
func (m CodeMap) Lookup(code string) error {
	if m == nil {
		return nil
	}
	return m[code]
}
