package bybit

import (
	"strconv"

	"github.com/buger/jsonparser"
	"github.com/lemconn/ccxt/errs"
)

// errorCodes Bybit v5 错误码
// https://bybit-exchange.github.io/docs/v5/error
var errorCodes = errs.CodeMap{
	"10001":  errs.ErrBadRequest,
	"10002":  errs.ErrAuthentication, // 时间戳超出 recv_window
	"10003":  errs.ErrAuthentication,
	"10004":  errs.ErrAuthentication, // 签名错误
	"10005":  errs.ErrPermissionDenied,
	"10006":  errs.ErrRateLimitExceeded,
	"10018":  errs.ErrRateLimitExceeded,
	"10016":  errs.ErrExchangeNotAvailable,
	"100028": errs.ErrNotSupported, // 统一账户不支持该操作
	"110001": errs.ErrOrderNotFound,
	"170213": errs.ErrOrderNotFound,
	"110003": errs.ErrInvalidOrder,
	"110017": errs.ErrInvalidOrder,
	"110094": errs.ErrInvalidOrder,
	"170136": errs.ErrInvalidOrder,
	"170137": errs.ErrInvalidOrder,
	"110004": errs.ErrInsufficientFunds,
	"110007": errs.ErrInsufficientFunds,
	"110012": errs.ErrInsufficientFunds,
	"170131": errs.ErrInsufficientFunds,
}

const (
	codeLeverageNotModified   = "110043"
	codeMarginModeNotModified = "110026"
)

// parseError Bybit 响应格式 {"retCode":0,"retMsg":"OK","result":{}}
func parseError(status int, body []byte) error {
	code, err := jsonparser.GetInt(body, "retCode")
	if err != nil || code == 0 {
		return nil
	}
	msg, _ := jsonparser.GetString(body, "retMsg")
	codeStr := strconv.FormatInt(code, 10)

	kind := errorCodes.Lookup(codeStr)
	if kind == nil && status < 300 {
		kind = errs.ErrExchange
	}
	return errs.New(bybitName, status, codeStr, msg, kind)
}
