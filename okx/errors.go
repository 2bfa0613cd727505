package okx

import (
	"github.com/buger/jsonparser"
	"github.com/lemconn/ccxt/errs"
)

// errorCodes OKX 错误码
// https://www.okx.com/docs-v5/en/#error-code
var errorCodes = errs.CodeMap{
	"50001": errs.ErrExchangeNotAvailable,
	"50004": errs.ErrExchangeNotAvailable,
	"50013": errs.ErrExchangeNotAvailable,
	"50011": errs.ErrRateLimitExceeded,
	"50061": errs.ErrRateLimitExceeded,
	"50014": errs.ErrBadRequest,
	"51000": errs.ErrBadRequest,
	"50100": errs.ErrAuthentication,
	"50101": errs.ErrAuthentication,
	"50102": errs.ErrAuthentication, // 时间戳过期
	"50103": errs.ErrAuthentication,
	"50104": errs.ErrAuthentication,
	"50105": errs.ErrAuthentication, // passphrase 错误
	"50111": errs.ErrAuthentication,
	"50113": errs.ErrAuthentication, // 签名无效
	"50110": errs.ErrPermissionDenied,
	"50120": errs.ErrPermissionDenied,
	"51001": errs.ErrBadSymbol,
	"51006": errs.ErrInvalidOrder,
	"51020": errs.ErrInvalidOrder,
	"51121": errs.ErrInvalidOrder,
	"51201": errs.ErrInvalidOrder,
	"51008": errs.ErrInsufficientFunds,
	"51131": errs.ErrInsufficientFunds,
	"51400": errs.ErrOrderNotFound,
	"51603": errs.ErrOrderNotFound,
}

// parseError OKX 响应格式 {"code":"0","msg":"","data":[...]}
//
// 批量或下单类接口的 code 为 1/2 时，具体原因在 data[0].sCode / sMsg 中。
func parseError(status int, body []byte) error {
	code, err := jsonparser.GetString(body, "code")
	if err != nil || code == "0" {
		return nil
	}
	msg, _ := jsonparser.GetString(body, "msg")

	if sCode, err := jsonparser.GetString(body, "data", "[0]", "sCode"); err == nil && sCode != "" && sCode != "0" {
		code = sCode
		if sMsg, err := jsonparser.GetString(body, "data", "[0]", "sMsg"); err == nil && sMsg != "" {
			msg = sMsg
		}
	}

	kind := errorCodes.Lookup(code)
	if kind == nil && status < 300 {
		kind = errs.ErrExchange
	}
	return errs.New(okxName, status, code, msg, kind)
}
