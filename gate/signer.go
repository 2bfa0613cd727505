package gate

import (
	"strconv"
	"strings"

	"github.com/lemconn/ccxt/common"
)

// Signer Gate v4 签名工具
type Signer struct {
	secretKey string
}

// NewSigner 创建签名工具
func NewSigner(secretKey string) *Signer {
	return &Signer{secretKey: secretKey}
}

// Sign 签名串为 METHOD\n/api/v4/path\nquery\nhex(sha512(body))\ntimestamp，timestamp 为秒
func (s *Signer) Sign(method, path, query string, body []byte, timestamp int64) string {
	payload := strings.Join([]string{
		strings.ToUpper(method),
		path,
		query,
		common.HashSHA512(body),
		strconv.FormatInt(timestamp, 10),
	}, "\n")
	return common.SignHMAC512(payload, s.secretKey)
}
