package binance

import (
	"strconv"

	"github.com/buger/jsonparser"
	"github.com/lemconn/ccxt/errs"
)

// errorCodes Binance 错误码
// https://developers.binance.com/docs/binance-spot-api-docs/errors
var errorCodes = errs.CodeMap{
	"-1003": errs.ErrRateLimitExceeded,
	"-1015": errs.ErrRateLimitExceeded,
	"-1021": errs.ErrAuthentication, // timestamp 超出 recvWindow
	"-1022": errs.ErrAuthentication,
	"-2014": errs.ErrAuthentication,
	"-2015": errs.ErrAuthentication,
	"-1002": errs.ErrPermissionDenied,
	"-1121": errs.ErrBadSymbol,
	"-1100": errs.ErrBadRequest,
	"-1102": errs.ErrBadRequest,
	"-1111": errs.ErrInvalidOrder,
	"-1013": errs.ErrInvalidOrder,
	"-4164": errs.ErrInvalidOrder,
	"-4003": errs.ErrInvalidOrder,
	"-2010": errs.ErrInsufficientFunds,
	"-2019": errs.ErrInsufficientFunds,
	"-2011": errs.ErrOrderNotFound,
	"-2013": errs.ErrOrderNotFound,
}

const (
	codeNoNeedChangeMarginType = "-4046"
)

// parseError Binance 错误响应格式 {"code":-1121,"msg":"Invalid symbol."}
func parseError(status int, body []byte) error {
	if status < 300 {
		return nil
	}
	code, err := jsonparser.GetInt(body, "code")
	if err != nil {
		return nil
	}
	msg, _ := jsonparser.GetString(body, "msg")
	codeStr := strconv.FormatInt(code, 10)
	return errs.New(binanceName, status, codeStr, msg, errorCodes.Lookup(codeStr))
}
