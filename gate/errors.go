package gate

import (
	"net/http"

	"github.com/buger/jsonparser"
	"github.com/lemconn/ccxt/errs"
)

// errorLabels Gate v4 错误标签
// https://www.gate.io/docs/developers/apiv4/#label-list
var errorLabels = errs.CodeMap{
	"INVALID_KEY":             errs.ErrAuthentication,
	"INVALID_SIGNATURE":       errs.ErrAuthentication,
	"MISSING_REQUIRED_HEADER": errs.ErrAuthentication,
	"REQUEST_EXPIRED":         errs.ErrAuthentication,
	"IP_FORBIDDEN":            errs.ErrPermissionDenied,
	"READ_ONLY":               errs.ErrPermissionDenied,
	"FORBIDDEN":               errs.ErrPermissionDenied,
	"TOO_MANY_REQUESTS":       errs.ErrRateLimitExceeded,
	"INVALID_PARAM_VALUE":     errs.ErrBadRequest,
	"INVALID_ARGUMENT":        errs.ErrBadRequest,
	"INVALID_REQUEST_BODY":    errs.ErrBadRequest,
	"MISSING_REQUIRED_PARAM":  errs.ErrBadRequest,
	"INVALID_CURRENCY_PAIR":   errs.ErrBadSymbol,
	"INVALID_CONTRACT":        errs.ErrBadSymbol,
	"CONTRACT_NOT_FOUND":      errs.ErrBadSymbol,
	"BALANCE_NOT_ENOUGH":      errs.ErrInsufficientFunds,
	"INSUFFICIENT_AVAILABLE":  errs.ErrInsufficientFunds,
	"MARGIN_NOT_ENOUGH":       errs.ErrInsufficientFunds,
	"ORDER_NOT_FOUND":         errs.ErrOrderNotFound,
	"ORDER_CLOSED":            errs.ErrOrderNotFound,
	"INVALID_PRECISION":       errs.ErrInvalidOrder,
	"INVALID_AMOUNT":          errs.ErrInvalidOrder,
	"ORDER_SIZE_TOO_SMALL":    errs.ErrInvalidOrder,
	"POC_FILL_IMMEDIATELY":    errs.ErrInvalidOrder,
	"REDUCE_ONLY_FAIL":        errs.ErrInvalidOrder,
	"LEVERAGE_TOO_HIGH":       errs.ErrBadRequest,
	"SERVER_ERROR":            errs.ErrExchangeNotAvailable,
	"TOO_BUSY":                errs.ErrExchangeNotAvailable,
}

// parseError Gate 通过 HTTP 状态码表示失败，响应体为 {"label":"...","message":"..."}
func parseError(status int, body []byte) error {
	if status < http.StatusMultipleChoices {
		return nil
	}
	label, err := jsonparser.GetString(body, "label")
	if err != nil || label == "" {
		return nil
	}
	msg, _ := jsonparser.GetString(body, "message")
	return errs.New(gateName, status, label, msg, errorLabels.Lookup(label))
}
