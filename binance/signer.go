package binance

import (
	"github.com/lemconn/ccxt/common"
)

// Signer Binance 签名：对完整 query 字符串做 HMAC-SHA256，十六进制输出
type Signer struct {
	secretKey string
}

// NewSigner 创建签名工具
func NewSigner(secretKey string) *Signer {
	return &Signer{secretKey: secretKey}
}

// Sign 对查询字符串签名
func (s *Signer) Sign(queryString string) string {
	return common.SignHMAC256(queryString, s.secretKey)
}
