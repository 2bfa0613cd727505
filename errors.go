package ccxt

import "github.com/lemconn/ccxt/errs"

// 统一错误，与 errs 包中的定义相同，便于只引入根包的调用方使用 errors.Is 判断
var (
	ErrExchangeNotSupported   = errs.ErrExchangeNotSupported
	ErrNotSupported           = errs.ErrNotSupported
	ErrMarketNotFound         = errs.ErrMarketNotFound
	ErrBadSymbol              = errs.ErrBadSymbol
	ErrBadRequest             = errs.ErrBadRequest
	ErrAuthenticationRequired = errs.ErrAuthenticationRequired
	ErrAuthentication         = errs.ErrAuthentication
	ErrPermissionDenied       = errs.ErrPermissionDenied
	ErrRateLimitExceeded      = errs.ErrRateLimitExceeded
	ErrInsufficientFunds      = errs.ErrInsufficientFunds
	ErrInvalidOrder           = errs.ErrInvalidOrder
	ErrOrderNotFound          = errs.ErrOrderNotFound
	ErrExchangeNotAvailable   = errs.ErrExchangeNotAvailable
	ErrExchange               = errs.ErrExchange
)

// ExchangeError 交易所返回的错误
type ExchangeError = errs.ExchangeError
