package okx

import (
	"github.com/lemconn/ccxt/common"
)

// Signer OKX 签名工具
type Signer struct {
	secretKey string
}

// NewSigner 创建签名工具
func NewSigner(secretKey string) *Signer {
	return &Signer{secretKey: secretKey}
}

// Sign 签名串为 timestamp + method + requestPath + body，requestPath 包含 query
func (s *Signer) Sign(timestamp, method, requestPath, body string) string {
	return common.SignHMAC256Base64(timestamp+method+requestPath+body, s.secretKey)
}
