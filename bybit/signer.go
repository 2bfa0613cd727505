package bybit

import (
	"strconv"

	"github.com/lemconn/ccxt/common"
)

// Signer Bybit v5 签名工具
type Signer struct {
	apiKey    string
	secretKey string
}

// NewSigner 创建签名工具
func NewSigner(apiKey, secretKey string) *Signer {
	return &Signer{apiKey: apiKey, secretKey: secretKey}
}

// Sign 签名串为 timestamp + apiKey + recvWindow + payload
// GET 请求 payload 为 query 字符串，POST 请求为 JSON 请求体
func (s *Signer) Sign(timestamp int64, recvWindow int, payload string) string {
	msg := strconv.FormatInt(timestamp, 10) + s.apiKey + strconv.Itoa(recvWindow) + payload
	return common.SignHMAC256(msg, s.secretKey)
}
